package models

// Klass is a cohort class bound to a section and a level.
type Klass struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SectionID int64  `json:"section_id"`
	LevelID   int64  `json:"level_id"`
	TeacherID *int64 `json:"teacher_id,omitempty"`

	Section *Section `json:"section,omitempty"`
	Level   *Level   `json:"level,omitempty"`
}
