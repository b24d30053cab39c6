// Package protocol defines the binary message format spoken on the
// interface port, shared between the firmware and host-side tools.
//
// Every message is a fixed 8-byte little-endian header followed by an
// optional payload:
//
//	offset 0  uint16  message ID
//	offset 2  uint16  reserved, must be zero
//	offset 4  uint16  payload size in bytes
//	offset 6  uint16  CRC16 of the payload
//
// Requests flow host to device; the device answers every request with
// exactly one reply, either ReplySuccess (whose payload depends on the
// request) or an error reply with an empty payload. Payload integers are
// little-endian, floats are IEEE 754 binary32 bit patterns, booleans are a
// single byte that is zero or one.
package protocol

import "encoding/binary"

const (
	// HeaderSize is the fixed message header length.
	HeaderSize = 8

	// MessageMax is the largest complete message, header included.
	MessageMax = 128

	// PayloadMax is the largest payload.
	PayloadMax = MessageMax - HeaderSize
)

// MessageID identifies a request or reply type.
type MessageID uint16

// Requests. The wire values are part of the protocol; append only.
const (
	RequestPing MessageID = iota
	RequestVersion
	RequestPanic

	RequestGetWPM
	RequestSetWPM
	RequestGetElementScale
	RequestSetElementScale
	RequestGetInvertPaddles
	RequestSetInvertPaddles
	RequestGetPaddleMode
	RequestSetPaddleMode

	RequestGetIOType
	RequestSetIOType
	RequestGetIOPolarity
	RequestSetIOPolarity
	RequestGetIOState
	RequestGetIOStateForType

	RequestGetLEDEnabled
	RequestSetLEDEnabled
	RequestGetBuzzerEnabled
	RequestSetBuzzerEnabled
	RequestGetBuzzerFrequency
	RequestSetBuzzerFrequency

	RequestGetTrainerMode
	RequestSetTrainerMode

	RequestAutokey
	RequestAutokeyPending

	RequestGetQuickMsg
	RequestSetQuickMsg
	RequestInvalidateQuickMsg
	RequestPlayQuickMsg

	RequestRestoreDefaults

	requestCount
)

// Replies.
const (
	ReplySuccess MessageID = 0x8000 + iota
	ReplyInvalidMessage
	ReplyInvalidSize
	ReplyInvalidCRC
	ReplyInvalidPayload
	ReplyInvalidValue

	replyEnd
)

// ValidRequest reports whether id is a known request.
func ValidRequest(id MessageID) bool {
	return id < requestCount
}

// ValidReply reports whether id is a known reply.
func ValidReply(id MessageID) bool {
	return id >= ReplySuccess && id < replyEnd
}

// Header is a decoded message header.
type Header struct {
	Message MessageID
	Size    uint16
	CRC     uint16
}

// Encode builds a complete wire message from an ID and payload. It panics
// if the payload exceeds PayloadMax; callers size their payloads
// statically.
func Encode(id MessageID, payload []byte) []byte {
	if len(payload) > PayloadMax {
		panic("protocol: payload too large")
	}
	msg := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(msg[0:], uint16(id))
	binary.LittleEndian.PutUint16(msg[4:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(msg[6:], CRC16(payload))
	copy(msg[HeaderSize:], payload)
	return msg
}

// ParseStatus is the outcome of a Parse call.
type ParseStatus uint8

const (
	// ParseNeedMore means the buffer does not yet hold a complete message.
	ParseNeedMore ParseStatus = iota

	// ParseOK means a message was parsed.
	ParseOK

	// ParseErrSize means the header announces an impossible payload size.
	ParseErrSize

	// ParseErrCRC means the payload failed its checksum.
	ParseErrCRC
)

// Parse examines the front of buf for one complete message. On ParseOK it
// returns the header, the payload (aliasing buf), and the number of bytes
// the message occupies. On a parse error the buffer contents are
// unsalvageable: there is no sync marker to hunt for, so the caller must
// discard the buffer and let the host time out and retry.
func Parse(buf []byte) (Header, []byte, int, ParseStatus) {
	if len(buf) < HeaderSize {
		return Header{}, nil, 0, ParseNeedMore
	}
	hdr := Header{
		Message: MessageID(binary.LittleEndian.Uint16(buf[0:])),
		Size:    binary.LittleEndian.Uint16(buf[4:]),
		CRC:     binary.LittleEndian.Uint16(buf[6:]),
	}
	if hdr.Size > PayloadMax {
		return hdr, nil, 0, ParseErrSize
	}
	total := HeaderSize + int(hdr.Size)
	if len(buf) < total {
		return hdr, nil, 0, ParseNeedMore
	}
	payload := buf[HeaderSize:total]
	if CRC16(payload) != hdr.CRC {
		return hdr, nil, 0, ParseErrCRC
	}
	return hdr, payload, total, ParseOK
}
