package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/cpne/stages/internal/pkg/logger"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStorage creates work directories below a base path on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance, making sure basePath exists.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// NewWorkDir creates <basePath>/<uuid>. The caller must call Cleanup once the response
// is streamed.
func (ls *LocalStorage) NewWorkDir() (*WorkDir, error) {
	dir := filepath.Join(ls.basePath, uuid.New().String())
	if err := os.Mkdir(dir, 0o750); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create work directory")
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &WorkDir{dir: dir}, nil
}

// WorkDir is a request-scoped scratch directory.
type WorkDir struct {
	dir string
}

// Dir returns the directory path.
func (w *WorkDir) Dir() string {
	return w.dir
}

// Path returns the location of name inside the directory. The name is reduced to a safe
// base name first, so entity labels can be used as file names.
func (w *WorkDir) Path(name string) string {
	return filepath.Join(w.dir, SafeName(name))
}

// SaveUpload copies an uploaded file into the directory, keeping its extension.
func (w *WorkDir) SaveUpload(fileHeader *multipart.FileHeader) (*Upload, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dstPath := filepath.Join(w.dir, "upload"+strings.ToLower(filepath.Ext(fileHeader.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Debug().Str("filename", fileHeader.Filename).Str("saved_as", dstPath).Msg("Upload saved")
	return &Upload{Filename: fileHeader.Filename, Path: dstPath, Size: size}, nil
}

// Cleanup removes the directory and everything in it.
func (w *WorkDir) Cleanup() {
	if err := os.RemoveAll(w.dir); err != nil {
		logger.Warn().Err(err).Str("path", w.dir).Msg("Failed to remove work directory")
	}
}

// SafeName turns an arbitrary label into a file name: accents and spaces become
// underscores and path separators are dropped.
func SafeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
