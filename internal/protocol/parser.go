package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// AckStatus is the device's verdict on a program frame.
type AckStatus byte

// Ack statuses
const (
	AckOK       AckStatus = 0x00
	AckRejected AckStatus = 0x01 // Device refused the content (e.g. text does not fit)
	AckBusy     AckStatus = 0x02 // Device is still rendering the previous program
	AckBadFrame AckStatus = 0x03 // Frame failed the device's own checks
)

// String returns a human-readable status name
func (s AckStatus) String() string {
	switch s {
	case AckOK:
		return "ok"
	case AckRejected:
		return "rejected"
	case AckBusy:
		return "busy"
	case AckBadFrame:
		return "bad frame"
	default:
		return fmt.Sprintf("status(0x%02x)", byte(s))
	}
}

// Ack is a decoded acknowledgement frame
type Ack struct {
	MessageID uint32
	Status    AckStatus
	Detail    string
}

// OK reports whether the device accepted the program
func (a *Ack) OK() bool {
	return a.Status == AckOK
}

// Record is one decoded message of a program payload
type Record struct {
	Mode    byte
	Speed   byte
	Effects byte
	Text    []byte
}

// ParseAck decodes an ack frame.
func ParseAck(frame *Frame) (*Ack, error) {
	if frame.Type != FrameTypeAck {
		return nil, fmt.Errorf("expected ack frame, got %s", frame.TypeString())
	}
	if len(frame.Payload) < 1 {
		return nil, fmt.Errorf("ack frame has empty payload")
	}
	return &Ack{
		MessageID: frame.MessageID,
		Status:    AckStatus(frame.Payload[0]),
		Detail:    string(frame.Payload[1:]),
	}, nil
}

// ReadAck reads one frame from r and decodes it as an ack.
func ReadAck(r io.Reader) (*Ack, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return ParseAck(frame)
}

// DecodeProgramPayload splits a program payload into its records.
func DecodeProgramPayload(payload []byte) ([]Record, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("program payload is empty")
	}

	count := int(payload[0])
	if count == 0 || count > 8 {
		return nil, fmt.Errorf("invalid message count: %d (expected 1-8)", count)
	}

	records := make([]Record, 0, count)
	offset := 1
	for i := 0; i < count; i++ {
		if len(payload)-offset < recordHeaderSize {
			return nil, fmt.Errorf("message %d: truncated record header at offset %d", i+1, offset)
		}
		textLen := int(binary.LittleEndian.Uint16(payload[offset+3 : offset+5]))
		start := offset + recordHeaderSize
		if len(payload)-start < textLen {
			return nil, fmt.Errorf("message %d: text length %d exceeds remaining %d bytes", i+1, textLen, len(payload)-start)
		}
		records = append(records, Record{
			Mode:    payload[offset],
			Speed:   payload[offset+1],
			Effects: payload[offset+2],
			Text:    payload[start : start+textLen],
		})
		offset = start + textLen
	}

	if offset != len(payload) {
		return nil, fmt.Errorf("%d trailing bytes after %d messages", len(payload)-offset, count)
	}
	return records, nil
}

// DecodeProgramFrame reads the records from a program frame.
func DecodeProgramFrame(frame *Frame) ([]Record, error) {
	if frame.Type != FrameTypeProgram {
		return nil, fmt.Errorf("expected program frame, got %s", frame.TypeString())
	}
	return DecodeProgramPayload(frame.Payload)
}
