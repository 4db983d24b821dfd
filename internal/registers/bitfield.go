// internal/registers/bitfield.go
package registers

import (
	"fmt"
	"strings"
)

// Field widths in bits.
const (
	FaultWidth     = 16
	AlarmWidth     = 32
	DipswitchWidth = 16
)

// BitRangeError reports set bits that have no entry in their name table.
type BitRangeError struct {
	Field    string
	Bits     []int
	TableLen int
}

func (e *BitRangeError) Error() string {
	bits := make([]string, len(e.Bits))
	for i, b := range e.Bits {
		bits[i] = fmt.Sprint(b)
	}
	return fmt.Sprintf("registers: %s bits [%s] beyond name table of %d entries",
		e.Field, strings.Join(bits, " "), e.TableLen)
}

// ValueRangeError reports an enumerated word with no entry in its name table.
type ValueRangeError struct {
	Field    string
	Value    uint16
	TableLen int
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("registers: %s value %d beyond name table of %d entries", e.Field, e.Value, e.TableLen)
}

// DecodeBits maps every set bit of value to its name.
//
// The field is read reversed relative to its written binary form, so bit 0
// (the LSB) is the first table entry. Names come back in bit order.
// Set bits past the table are never indexed; they are collected into a
// *BitRangeError returned alongside the names that did resolve.
func DecodeBits(field string, value uint32, width int, table []string) ([]string, error) {
	names := []string{}
	var unknown []int

	for i := 0; i < width; i++ {
		if value&(1<<uint(i)) == 0 {
			continue
		}
		if i >= len(table) {
			unknown = append(unknown, i)
			continue
		}
		names = append(names, table[i])
	}

	if len(unknown) > 0 {
		return names, &BitRangeError{Field: field, Bits: unknown, TableLen: len(table)}
	}
	return names, nil
}

// Lookup names an enumerated word.
func Lookup(field string, value uint16, table []string) (string, error) {
	if int(value) >= len(table) {
		return "", &ValueRangeError{Field: field, Value: value, TableLen: len(table)}
	}
	return table[value], nil
}

// DecodeFaults decodes the fault word of a snapshot.
func DecodeFaults(s *Snapshot) ([]string, error) {
	w, err := s.Word(FaultBits)
	if err != nil {
		return nil, err
	}
	return DecodeBits("fault", uint32(w), FaultWidth, Faults)
}

// DecodeAlarms decodes the two alarm words of a snapshot as one 32-bit field.
func DecodeAlarms(s *Snapshot) ([]string, error) {
	w, err := s.Words(AlarmHI, AlarmLO)
	if err != nil {
		return nil, err
	}
	return DecodeBits("alarm", uint32(w[0])<<16|uint32(w[1]), AlarmWidth, Alarms)
}

// DecodeDipswitches decodes the settings switch word of a snapshot.
func DecodeDipswitches(s *Snapshot) ([]string, error) {
	w, err := s.Word(DipswitchBits)
	if err != nil {
		return nil, err
	}
	return DecodeBits("dipswitch", uint32(w), DipswitchWidth, Dipswitches)
}
