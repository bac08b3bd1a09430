package protocol

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Frame constants
const (
	FrameSync    = 0x7e
	FrameVersion = 0x01

	HeaderSize  = 9 // sync + version + type + 4-byte ID + 2-byte length
	TrailerSize = 4 // CRC-32

	// MaxPayloadSize bounds a single frame payload
	MaxPayloadSize = 8192
)

// Frame types
const (
	FrameTypeProgram = 0x10
	FrameTypeAck     = 0x11
)

// Frame is a decoded binary frame
type Frame struct {
	Type      byte
	MessageID uint32
	Payload   []byte
	Raw       []byte // Original frame bytes for debugging
}

// TypeString returns a human-readable frame type
func (f *Frame) TypeString() string {
	switch f.Type {
	case FrameTypeProgram:
		return "program"
	case FrameTypeAck:
		return "ack"
	default:
		return fmt.Sprintf("unknown(0x%02X)", f.Type)
	}
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{Type=%s, ID=%d, Length=%d}", f.TypeString(), f.MessageID, len(f.Payload))
}

// BuildFrame wraps payload in a frame header and CRC trailer.
func BuildFrame(frameType byte, messageID uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	frame := make([]byte, HeaderSize+len(payload)+TrailerSize)
	frame[0] = FrameSync
	frame[1] = FrameVersion
	frame[2] = frameType
	binary.LittleEndian.PutUint32(frame[3:7], messageID)
	binary.LittleEndian.PutUint16(frame[7:9], uint16(len(payload)))
	copy(frame[HeaderSize:], payload)

	crcEnd := HeaderSize + len(payload)
	binary.LittleEndian.PutUint32(frame[crcEnd:], crc32.ChecksumIEEE(frame[1:crcEnd]))

	return frame, nil
}

// ReadFrame reads and verifies one frame from r.
// Bytes before the sync byte are skipped so a reader can resynchronize
// after line noise.
func ReadFrame(r io.Reader) (*Frame, error) {
	one := make([]byte, 1)
	skipped := 0
	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return nil, fmt.Errorf("failed to read sync byte: %w", err)
		}
		if one[0] == FrameSync {
			break
		}
		skipped++
		if skipped > MaxPayloadSize {
			return nil, fmt.Errorf("no sync byte within %d bytes", MaxPayloadSize)
		}
	}

	header := make([]byte, HeaderSize)
	header[0] = FrameSync
	if _, err := io.ReadFull(r, header[1:]); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	if header[1] != FrameVersion {
		return nil, fmt.Errorf("unsupported frame version: 0x%02x (expected 0x%02x)", header[1], FrameVersion)
	}

	length := int(binary.LittleEndian.Uint16(header[7:9]))
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("frame payload too large: %d bytes (max %d)", length, MaxPayloadSize)
	}

	rest := make([]byte, length+TrailerSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	raw := append(header, rest...)
	if err := ValidateFrame(raw); err != nil {
		return nil, err
	}

	return &Frame{
		Type:      header[2],
		MessageID: binary.LittleEndian.Uint32(header[3:7]),
		Payload:   raw[HeaderSize : HeaderSize+length],
		Raw:       raw,
	}, nil
}

// ValidateFrame checks the structure and CRC of a complete frame.
func ValidateFrame(frame []byte) error {
	if len(frame) < HeaderSize+TrailerSize {
		return fmt.Errorf("frame too short: %d bytes (minimum %d)", len(frame), HeaderSize+TrailerSize)
	}
	if frame[0] != FrameSync {
		return fmt.Errorf("invalid sync byte: 0x%02x (expected 0x%02x)", frame[0], FrameSync)
	}
	if frame[1] != FrameVersion {
		return fmt.Errorf("unsupported frame version: 0x%02x (expected 0x%02x)", frame[1], FrameVersion)
	}

	length := int(binary.LittleEndian.Uint16(frame[7:9]))
	if want := HeaderSize + length + TrailerSize; len(frame) != want {
		return fmt.Errorf("frame length mismatch: header says %d payload bytes, frame is %d bytes (expected %d)",
			length, len(frame), want)
	}

	crcEnd := HeaderSize + length
	got := binary.LittleEndian.Uint32(frame[crcEnd:])
	if want := crc32.ChecksumIEEE(frame[1:crcEnd]); got != want {
		return fmt.Errorf("CRC mismatch: got 0x%08x, want 0x%08x", got, want)
	}
	return nil
}
