package signature

import (
	"encoding/json"
	"fmt"
	"os"
)

// Session is an ordered collection of signatures from one recording
// session. The recorder appends one entry per interaction; the replay
// core only ever reads the file.
type Session struct {
	SourcePath string
	Records    []ElementSignature
}

// LoadSession reads a session file: a JSON array of signature records,
// or a single record object.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided session file
	if err != nil {
		return nil, err
	}

	var records []ElementSignature
	if err := json.Unmarshal(data, &records); err != nil {
		// Single-record files are written by one-shot inspectors.
		var one ElementSignature
		if err2 := json.Unmarshal(data, &one); err2 != nil {
			return nil, fmt.Errorf("parse session %s: %w", path, err)
		}
		records = []ElementSignature{one}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("session %s contains no records", path)
	}

	return &Session{SourcePath: path, Records: records}, nil
}

// At returns the record at index, or the last record when index is
// negative (the most recent interaction is the usual replay target).
func (s *Session) At(index int) (*ElementSignature, error) {
	if index < 0 {
		index = len(s.Records) - 1
	}
	if index >= len(s.Records) {
		return nil, fmt.Errorf("session index %d out of range (0..%d)", index, len(s.Records)-1)
	}
	return &s.Records[index], nil
}

// Len returns the number of recorded interactions.
func (s *Session) Len() int {
	return len(s.Records)
}
