package models

import "strconv"

// Section is an academic track (ASE, EDE, MP_ASE...).
type Section struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Level is an ordinal school year label ("1", "2", "3").
type Level struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeltaName returns the name of the level shifted by diff years. Non-numeric names have
// no neighbours, ok is false for them.
func (l *Level) DeltaName(diff int) (name string, ok bool) {
	if diff == 0 {
		return l.Name, true
	}
	n, err := strconv.Atoi(l.Name)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n + diff), true
}
