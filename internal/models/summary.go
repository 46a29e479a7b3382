package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Summary maps detector class names to occurrence counts while preserving
// the order in which classes were first seen. Department routing is
// first-match-wins over this stored order, so the order must survive a
// round trip through the database.
type Summary struct {
	keys   []string
	counts map[string]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[string]int)}
}

// Add increments the count for a class name, registering the class on
// first sight.
func (s *Summary) Add(class string, n int) {
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	if _, ok := s.counts[class]; !ok {
		s.keys = append(s.keys, class)
	}
	s.counts[class] += n
}

// Merge folds another summary into this one, key-wise.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		s.Add(k, other.counts[k])
	}
}

// Count returns the occurrence count for a class name.
func (s *Summary) Count(class string) int {
	if s == nil {
		return 0
	}
	return s.counts[class]
}

// Keys returns the class names in stored (first-seen) order.
func (s *Summary) Keys() []string {
	if s == nil {
		return nil
	}
	return s.keys
}

// Len returns the number of distinct class names.
func (s *Summary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Empty reports whether the summary holds no detections.
func (s *Summary) Empty() bool {
	return s.Len() == 0
}

// Total returns the sum of all occurrence counts.
func (s *Summary) Total() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, v := range s.counts {
		total += v
	}
	return total
}

// MarshalJSON writes the summary as a JSON object with keys in stored order.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(s.counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving its document key order.
func (s *Summary) UnmarshalJSON(data []byte) error {
	s.keys = nil
	s.counts = make(map[string]int)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode summary: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("summary must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode summary key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("summary key must be a string, got %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("failed to decode count for %q: %w", key, err)
		}
		s.Add(key, count)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode summary: %w", err)
	}
	return nil
}

// ParseSummary decodes a stored summary string. An empty string decodes to
// an empty summary, matching rows written before any detections existed.
func ParseSummary(raw string) (*Summary, error) {
	s := NewSummary()
	if raw == "" {
		return s, nil
	}
	if err := s.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}
	return s, nil
}
