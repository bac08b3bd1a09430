// Package protocol implements the wire formats spoken by display sinks.
//
// Two formats are defined here:
//
//   - A compact binary frame used over serial lines to a microcontroller
//     that drives the LED matrix.
//   - A JSON message pair used over WebSocket to a network display bridge.
//
// # Binary Frame Format
//
// Every frame, in either direction, has this layout:
//
//	[0]     0x7e           Sync byte (FrameSync)
//	[1]     0x01           Version byte (FrameVersion)
//	[2]     type           FrameTypeProgram or FrameTypeAck
//	[3-6]   message_id     Message ID (little-endian uint32)
//	[7-8]   length         Payload length (little-endian uint16)
//	[9+]    payload        Payload bytes
//	[N-4:N] crc            CRC-32 (IEEE) of bytes [1, N-4), little-endian
//
// A program payload starts with a message count (1-8) followed by one
// record per message:
//
//	[0]     mode           Mode wire value (0-8)
//	[1]     speed          Speed tier (0-7)
//	[2]     effects        Bit 0 flashing, bit 1 border, bit 2 inverted
//	[3-4]   text_len       Encoded text length (little-endian uint16)
//	[5+]    text           Text in the device charset
//
// An ack payload is a status byte followed by an optional ASCII detail
// string. Status 0 means the device accepted the program.
//
// # Usage Example
//
//	frame, err := protocol.BuildProgramFrame(protocol.GenerateMessageID(), prog, display.Latin1)
//	if err != nil {
//	    return err
//	}
//	if _, err := port.Write(frame); err != nil {
//	    return err
//	}
//	ack, err := protocol.ReadAck(port)
//
// # Thread Safety
//
// All functions are pure except GenerateMessageID, which uses an atomic
// counter and is safe for concurrent use.
package protocol
