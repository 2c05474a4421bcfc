package filestorage

// FileStorage hands out scratch directories for generated documents and uploads
type FileStorage interface {
	// NewWorkDir creates a fresh directory private to one request
	NewWorkDir() (*WorkDir, error)
}

// Upload is what an import reads: the original file name and where it was saved.
type Upload struct {
	Filename string
	Path     string
	Size     int64
}
