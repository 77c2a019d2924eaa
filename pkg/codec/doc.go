// Package codec provides the wire codec for the gamestate datagram and its
// companion packets.
//
// # Record Format
//
// A gamestate record is a fixed 18-byte big-endian structure:
//
//	[F0(2)][F1(2)][F2(2)][F3(2)][F4(2)][F5(2)][F6(2)][F7(2)][G0(1)][G1(1)]
//
// Fields:
//   - F0..F7: signed 16-bit integers (Record.Fields)
//   - G0..G1: unsigned 8-bit integers (Record.Flags)
//
// The record has no length prefix, no checksum and no version byte. Its size
// is the only thing that identifies it on the wire.
//
// # Companion Packets
//
// Two smaller packets share the same socket:
//
//	InputPacket:  [Up(1)][Down(1)]
//	WhoamiPacket: [IsServer(1)]
//
// Booleans are encoded as a single byte, 0x00 or 0x01. Classify tells the
// three apart by length.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	encoded, err := c.EncodeValues(0, 0, 400, 100, 200, 100, 1, 1, 0, 0)
//	if err != nil {
//	    return err
//	}
//
//	record, err := c.Decode(encoded)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(record.Values())
//
// # Error Handling
//
// Every malformed input is reported as a *FormatError: wrong length, wrong
// number of values, or a value outside the range of its field. Values are
// never truncated. Use errors.As to inspect the field, or errors.Is with
// ErrFormat to test the class.
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use. Record is a
// plain value type.
package codec
