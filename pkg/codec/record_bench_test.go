//go:build bench
// +build bench

package codec

import (
	"testing"
)

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec()
	record, err := NewRecord(0, 0, 400, 100, 200, 100, 1, 1, 0, 0)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Encode(record); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_EncodeValues(b *testing.B) {
	codec := NewRecordCodec()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.EncodeValues(0, 0, 400, 100, 200, 100, 1, 1, 0, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Decode(sampleDatagram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDescribe(b *testing.B) {
	datagrams := map[string][]byte{
		"gamestate": sampleDatagram,
		"input":     {0x01, 0x00},
		"whoami":    {0x00},
	}

	for name, data := range datagrams {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Describe(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
