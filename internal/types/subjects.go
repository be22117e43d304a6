// Package types provides type definitions for the identities and records used throughout the results system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Subjects maps subject codes to grades and remembers the order in which
// codes were first set. It serializes as a JSON object in that order.
type Subjects struct {
	codes  []string
	grades map[string]string
}

// NewSubjects returns an empty Subjects.
func NewSubjects() Subjects {
	return Subjects{grades: map[string]string{}}
}

// Set records the grade for a subject code. Setting a code that is already
// present replaces its grade and keeps its original position.
func (s *Subjects) Set(code, grade string) {
	if s.grades == nil {
		s.grades = map[string]string{}
	}
	if _, ok := s.grades[code]; !ok {
		s.codes = append(s.codes, code)
	}
	s.grades[code] = grade
}

// Get returns the grade for a subject code.
func (s Subjects) Get(code string) (string, bool) {
	grade, ok := s.grades[code]
	return grade, ok
}

// Codes returns the subject codes in insertion order.
func (s Subjects) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Len returns the number of distinct subject codes.
func (s Subjects) Len() int {
	return len(s.codes)
}

// Map returns a copy of the grades keyed by subject code.
func (s Subjects) Map() map[string]string {
	out := make(map[string]string, len(s.grades))
	for k, v := range s.grades {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the subjects as an object with keys in insertion order.
func (s Subjects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range s.codes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.grades[code])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of subject/grade strings, keeping key order.
func (s *Subjects) UnmarshalJSON(data []byte) error {
	*s = NewSubjects()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("subjects: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("subjects: expected string key, got %v", tok)
		}
		var grade string
		if err := dec.Decode(&grade); err != nil {
			return fmt.Errorf("subjects: grade for %s: %w", code, err)
		}
		s.Set(code, grade)
	}

	_, err = dec.Token()
	return err
}
