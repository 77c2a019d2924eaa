package codec

const (
	// InputSize is the encoded size of an InputPacket
	InputSize = 2
	// WhoamiSize is the encoded size of a WhoamiPacket
	WhoamiSize = 1
)

// InputPacket carries one player's paddle controls
type InputPacket struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

// WhoamiPacket announces which side of the connection a peer is
type WhoamiPacket struct {
	IsServer bool `json:"is_server"`
}

// Kind identifies a datagram by its length
type Kind int

const (
	KindUnknown Kind = iota
	KindGamestate
	KindInput
	KindWhoami
)

func (k Kind) String() string {
	switch k {
	case KindGamestate:
		return "gamestate"
	case KindInput:
		return "input"
	case KindWhoami:
		return "whoami"
	default:
		return "unknown"
	}
}

// Classify returns the packet kind implied by the datagram length
func Classify(data []byte) Kind {
	switch len(data) {
	case RecordSize:
		return KindGamestate
	case InputSize:
		return KindInput
	case WhoamiSize:
		return KindWhoami
	default:
		return KindUnknown
	}
}

// EncodeInput serializes an input packet
func EncodeInput(p InputPacket) []byte {
	return []byte{boolByte(p.Up), boolByte(p.Down)}
}

// DecodeInput deserializes an input packet
func DecodeInput(data []byte) (InputPacket, error) {
	if len(data) != InputSize {
		return InputPacket{}, lengthError("decode", "input", InputSize, len(data))
	}
	up, err := byteBool("input", 0, data[0])
	if err != nil {
		return InputPacket{}, err
	}
	down, err := byteBool("input", 1, data[1])
	if err != nil {
		return InputPacket{}, err
	}
	return InputPacket{Up: up, Down: down}, nil
}

// EncodeWhoami serializes a whoami packet
func EncodeWhoami(p WhoamiPacket) []byte {
	return []byte{boolByte(p.IsServer)}
}

// DecodeWhoami deserializes a whoami packet
func DecodeWhoami(data []byte) (WhoamiPacket, error) {
	if len(data) != WhoamiSize {
		return WhoamiPacket{}, lengthError("decode", "whoami", WhoamiSize, len(data))
	}
	isServer, err := byteBool("whoami", 0, data[0])
	if err != nil {
		return WhoamiPacket{}, err
	}
	return WhoamiPacket{IsServer: isServer}, nil
}

// Message is a decoded datagram of any known kind. Exactly one of the
// payload pointers is set.
type Message struct {
	Kind      string        `json:"kind"`
	Gamestate *Record       `json:"gamestate,omitempty"`
	Values    []int         `json:"values,omitempty"`
	Input     *InputPacket  `json:"input,omitempty"`
	Whoami    *WhoamiPacket `json:"whoami,omitempty"`
}

// Describe classifies a datagram and decodes it
func Describe(data []byte) (*Message, error) {
	kind := Classify(data)
	msg := &Message{Kind: kind.String()}

	switch kind {
	case KindGamestate:
		r, err := NewRecordCodec().Decode(data)
		if err != nil {
			return nil, err
		}
		msg.Gamestate = r
		msg.Values = r.Values()
	case KindInput:
		p, err := DecodeInput(data)
		if err != nil {
			return nil, err
		}
		msg.Input = &p
	case KindWhoami:
		p, err := DecodeWhoami(data)
		if err != nil {
			return nil, err
		}
		msg.Whoami = &p
	default:
		return nil, &FormatError{
			Op:     "decode",
			Packet: kind.String(),
			Field:  -1,
			Value:  len(data),
			Reason: "length matches no known packet",
		}
	}

	return msg, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func byteBool(packet string, field int, b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &FormatError{
			Op:     "decode",
			Packet: packet,
			Field:  field,
			Value:  int(b),
			Reason: "boolean must be 0 or 1",
		}
	}
}
