package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// FieldCount is the number of signed 16-bit fields in a record
	FieldCount = 8
	// FlagCount is the number of unsigned 8-bit fields in a record
	FlagCount = 2
	// ValueCount is the length of the flat value tuple
	ValueCount = FieldCount + FlagCount
	// RecordSize is the encoded size of a record in bytes
	RecordSize = FieldCount*2 + FlagCount
)

const packetGamestate = "gamestate"

// Record is one gamestate datagram
type Record struct {
	Fields [FieldCount]int16 `json:"fields"`
	Flags  [FlagCount]uint8  `json:"flags"`
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// NewRecord builds a record from a flat tuple of ten values, checking that
// each value fits its field.
func NewRecord(values ...int) (*Record, error) {
	if len(values) != ValueCount {
		return nil, &FormatError{
			Op:     "encode",
			Packet: packetGamestate,
			Field:  -1,
			Value:  len(values),
			Reason: fmt.Sprintf("expected %d values", ValueCount),
		}
	}

	r := &Record{}
	for i, v := range values[:FieldCount] {
		if v < math.MinInt16 || v > math.MaxInt16 {
			return nil, &FormatError{
				Op:     "encode",
				Packet: packetGamestate,
				Field:  i,
				Value:  v,
				Reason: "out of range for int16",
			}
		}
		r.Fields[i] = int16(v)
	}
	for i, v := range values[FieldCount:] {
		if v < 0 || v > math.MaxUint8 {
			return nil, &FormatError{
				Op:     "encode",
				Packet: packetGamestate,
				Field:  FieldCount + i,
				Value:  v,
				Reason: "out of range for uint8",
			}
		}
		r.Flags[i] = uint8(v)
	}

	return r, nil
}

// Values returns the record as a flat tuple in wire order
func (r *Record) Values() []int {
	values := make([]int, 0, ValueCount)
	for _, f := range r.Fields {
		values = append(values, int(f))
	}
	for _, g := range r.Flags {
		values = append(values, int(g))
	}
	return values
}

// Size returns the encoded size of the record
func (r *Record) Size() int {
	return RecordSize
}

// Encode serializes a record into its 18-byte wire form
// Format: [F0..F7 int16 BE][G0..G1 uint8]
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	if r == nil {
		return nil, &FormatError{Op: "encode", Packet: packetGamestate, Field: -1, Reason: "nil record"}
	}

	buf := make([]byte, RecordSize)
	for i, f := range r.Fields {
		binary.BigEndian.PutUint16(buf[i*2:], uint16(f))
	}
	copy(buf[FieldCount*2:], r.Flags[:])

	return buf, nil
}

// EncodeValues range-checks a flat tuple and serializes it
func (c *RecordCodec) EncodeValues(values ...int) ([]byte, error) {
	r, err := NewRecord(values...)
	if err != nil {
		return nil, err
	}
	return c.Encode(r)
}

// Decode deserializes exactly one 18-byte record
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) != RecordSize {
		return nil, lengthError("decode", packetGamestate, RecordSize, len(data))
	}

	r := &Record{}
	for i := range r.Fields {
		r.Fields[i] = int16(binary.BigEndian.Uint16(data[i*2:]))
	}
	copy(r.Flags[:], data[FieldCount*2:])

	return r, nil
}
