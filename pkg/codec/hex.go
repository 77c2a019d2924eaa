package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHex decodes a hex dump such as "00 00 60 64", "00:00:60:64" or
// "0x00006064" into bytes.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}

// FormatHex renders bytes as space separated hex pairs
func FormatHex(data []byte) string {
	return fmt.Sprintf("% x", data)
}
