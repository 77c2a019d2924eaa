package codec_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/gamestate/pkg/codec"
)

// ExampleRecordCodec_basic demonstrates encoding and decoding a gamestate tuple
func ExampleRecordCodec_basic() {
	c := codec.NewRecordCodec()

	encoded, err := c.EncodeValues(0, 0, 400, 100, 200, 100, 1, 1, 0, 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes: % x\n", len(encoded), encoded)

	record, err := c.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(record.Values())

	// Output:
	// Encoded 18 bytes: 00 00 00 00 01 90 00 64 00 c8 00 64 00 01 00 01 00 00
	// [0 0 400 100 200 100 1 1 0 0]
}

// ExampleRecordCodec_errorHandling demonstrates the FormatError contract
func ExampleRecordCodec_errorHandling() {
	c := codec.NewRecordCodec()

	_, err := c.EncodeValues(100000, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	var fe *codec.FormatError
	if errors.As(err, &fe) {
		fmt.Printf("Field %d rejected: %v\n", fe.Field, err)
	}

	_, err = c.Decode([]byte{0x01, 0x02, 0x03})
	fmt.Printf("Decode error: %v\n", err)

	// Output:
	// Field 0 rejected: encode gamestate: field 0: out of range for int16 (got 100000)
	// Decode error: decode gamestate: expected 18 bytes (got 3)
}

// ExampleDescribe demonstrates classifying datagrams by length
func ExampleDescribe() {
	for _, datagram := range [][]byte{
		codec.EncodeInput(codec.InputPacket{Up: true}),
		codec.EncodeWhoami(codec.WhoamiPacket{IsServer: true}),
	} {
		msg, err := codec.Describe(datagram)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(msg.Kind)
	}

	// Output:
	// input
	// whoami
}
