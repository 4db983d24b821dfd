// internal/registers/snapshot.go
package registers

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned when nothing has been published yet.
var ErrNoSnapshot = errors.New("registers: no snapshot published yet")

// DecodeError reports a register outside the captured block.
type DecodeError struct {
	Register Register
	Len      int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("registers: register %d outside snapshot of %d words", e.Register, e.Len)
}

// Snapshot is one complete block read.
// It is immutable once built: words are copied in and never exposed.
type Snapshot struct {
	words []uint16
	at    time.Time
}

// NewSnapshot copies words into a new snapshot taken at the given time.
func NewSnapshot(words []uint16, at time.Time) *Snapshot {
	w := make([]uint16, len(words))
	copy(w, words)
	return &Snapshot{words: w, at: at}
}

// Word returns the raw value of one register.
// A nil snapshot yields ErrNoSnapshot; a short one yields *DecodeError.
func (s *Snapshot) Word(r Register) (uint16, error) {
	if s == nil {
		return 0, ErrNoSnapshot
	}
	if int(r) >= len(s.words) {
		return 0, &DecodeError{Register: r, Len: len(s.words)}
	}
	return s.words[r], nil
}

// Words returns the raw values of several registers, failing on the first miss.
func (s *Snapshot) Words(regs ...Register) ([]uint16, error) {
	out := make([]uint16, len(regs))
	for i, r := range regs {
		v, err := s.Word(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Len is the number of captured registers.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// At is the capture time.
func (s *Snapshot) At() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.at
}
