package protocol

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/muurk/ledbadge/internal/display"
)

// recordHeaderSize is mode + speed + effects + 2-byte text length
const recordHeaderSize = 5

// Global message ID counter (thread-safe)
var messageIDCounter uint32

// GenerateMessageID returns a new non-zero message ID.
func GenerateMessageID() uint32 {
	for {
		if id := atomic.AddUint32(&messageIDCounter, 1); id != 0 {
			return id
		}
	}
}

// EncodeProgramPayload serializes a program into a program payload.
// Text is encoded with cs; a nil cs sends raw UTF-8.
func EncodeProgramPayload(prog display.Program, cs display.Charset) ([]byte, error) {
	if !prog.Valid() {
		return nil, fmt.Errorf("program must hold 1-%d validated messages, got %d", display.MaxProgramLength, prog.Len())
	}

	payload := []byte{byte(prog.Len())}
	for i, cmd := range prog.Commands() {
		text, err := display.EncodeText(cs, cmd.Text())
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		if len(text) > 0xFFFF {
			return nil, fmt.Errorf("message %d: text too large: %d bytes", i+1, len(text))
		}

		record := make([]byte, recordHeaderSize, recordHeaderSize+len(text))
		record[0] = byte(cmd.Mode())
		record[1] = byte(cmd.Speed())
		record[2] = byte(cmd.Effects())
		binary.LittleEndian.PutUint16(record[3:5], uint16(len(text)))
		payload = append(payload, append(record, text...)...)
	}
	return payload, nil
}

// BuildProgramFrame constructs a complete program frame ready for the wire.
//
// Example:
//
//	frame, err := BuildProgramFrame(GenerateMessageID(), display.ProgramOf(cmd), display.Latin1)
func BuildProgramFrame(messageID uint32, prog display.Program, cs display.Charset) ([]byte, error) {
	payload, err := EncodeProgramPayload(prog, cs)
	if err != nil {
		return nil, err
	}
	return BuildFrame(FrameTypeProgram, messageID, payload)
}

// BuildAckFrame constructs the acknowledgement a device sends back.
// Used by device firmware simulators and tests.
func BuildAckFrame(messageID uint32, status AckStatus, detail string) ([]byte, error) {
	payload := append([]byte{byte(status)}, detail...)
	return BuildFrame(FrameTypeAck, messageID, payload)
}
