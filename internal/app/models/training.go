package models

import (
	"encoding/json"
	"fmt"
)

// Training binds one student to one availability. An availability carries at most one
// training.
type Training struct {
	ID             int64  `json:"id"`
	StudentID      int64  `json:"student_id"`
	AvailabilityID int64  `json:"availability_id"`
	ReferentID     *int64 `json:"referent_id,omitempty"`
	Comment        string `json:"comment"`
}

// TrainingBinding is the input of an atomic training creation. When SetContact is true the
// availability contact is replaced by ContactID in the same transaction.
type TrainingBinding struct {
	Training
	ContactID  *int64
	SetContact bool
}

// TrainingView is a training with the labels listed per period.
type TrainingView struct {
	ID               int64  `json:"id"`
	StudentID        int64  `json:"student_id"`
	StudentFirstName string `json:"-"`
	StudentLastName  string `json:"-"`
	KlassName        string `json:"klass"`
	CorporationName  string `json:"corporation"`
	DomainName       string `json:"domain"`
	ReferentID       *int64 `json:"referent_id,omitempty"`
	ReferentName     string `json:"referent"`
	Comment          string `json:"comment"`
}

// StudentLabel is the "Last First" student label.
func (v *TrainingView) StudentLabel() string {
	return joinName(v.StudentLastName, v.StudentFirstName)
}

// TrainingSnapshot is the archived summary of a training, kept in Student.ArchivedText
// once the student leaves the school.
type TrainingSnapshot struct {
	Period       string `json:"period"`
	Corporation  string `json:"corporation"`
	Referent     string `json:"referent"`
	Comment      string `json:"comment"`
	Contact      string `json:"contact"`
	CommentAvail string `json:"comment_avail"`
	Domain       string `json:"domain"`
}

// EncodeArchive serializes snapshots as a JSON array. An empty list encodes as "[]" so an
// archived student never ends up with a blank archived_text.
func EncodeArchive(snapshots []TrainingSnapshot) (string, error) {
	if snapshots == nil {
		snapshots = []TrainingSnapshot{}
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return "", fmt.Errorf("encoding training archive: %w", err)
	}
	return string(data), nil
}

// DecodeArchive parses an archived_text value.
func DecodeArchive(text string) ([]TrainingSnapshot, error) {
	var snapshots []TrainingSnapshot
	if err := json.Unmarshal([]byte(text), &snapshots); err != nil {
		return nil, fmt.Errorf("decoding training archive: %w", err)
	}
	return snapshots, nil
}
