package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	msg := Encode(RequestAutokey, payload)

	if len(msg) != HeaderSize+len(payload) {
		t.Fatalf("Encoded length = %d, want %d", len(msg), HeaderSize+len(payload))
	}

	hdr, got, consumed, status := Parse(msg)
	if status != ParseOK {
		t.Fatalf("Parse status = %d, want ParseOK", status)
	}
	if hdr.Message != RequestAutokey {
		t.Errorf("Message = %d, want %d", hdr.Message, RequestAutokey)
	}
	if consumed != len(msg) {
		t.Errorf("consumed = %d, want %d", consumed, len(msg))
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %v, want %v", got, payload)
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	msg := Encode(RequestPing, nil)
	if len(msg) != HeaderSize {
		t.Fatalf("Encoded length = %d, want %d", len(msg), HeaderSize)
	}
	hdr, payload, _, status := Parse(msg)
	if status != ParseOK {
		t.Fatalf("Parse status = %d, want ParseOK", status)
	}
	if hdr.Size != 0 || len(payload) != 0 {
		t.Errorf("expected empty payload, got size=%d len=%d", hdr.Size, len(payload))
	}
}

func TestParseNeedMore(t *testing.T) {
	msg := Encode(RequestSetWPM, []byte{1, 2, 3, 4})
	for cut := 0; cut < len(msg); cut++ {
		if _, _, _, status := Parse(msg[:cut]); status != ParseNeedMore {
			t.Errorf("Parse of %d/%d bytes: status = %d, want ParseNeedMore",
				cut, len(msg), status)
		}
	}
}

func TestParseBadCRC(t *testing.T) {
	msg := Encode(RequestSetWPM, []byte{1, 2, 3, 4})
	msg[len(msg)-1] ^= 0xFF
	if _, _, _, status := Parse(msg); status != ParseErrCRC {
		t.Errorf("Parse status = %d, want ParseErrCRC", status)
	}
}

func TestParseBadSize(t *testing.T) {
	msg := Encode(RequestPing, nil)
	msg[4] = 0xFF // announce an impossible payload size
	msg[5] = 0xFF
	if _, _, _, status := Parse(msg); status != ParseErrSize {
		t.Errorf("Parse status = %d, want ParseErrSize", status)
	}
}

func TestParseTrailingData(t *testing.T) {
	first := Encode(RequestPing, nil)
	second := Encode(RequestVersion, nil)
	stream := append(append([]byte{}, first...), second...)

	hdr, _, consumed, status := Parse(stream)
	if status != ParseOK || hdr.Message != RequestPing {
		t.Fatalf("first parse: status=%d message=%d", status, hdr.Message)
	}
	hdr, _, _, status = Parse(stream[consumed:])
	if status != ParseOK || hdr.Message != RequestVersion {
		t.Fatalf("second parse: status=%d message=%d", status, hdr.Message)
	}
}

func TestValidRequestReply(t *testing.T) {
	if !ValidRequest(RequestPing) {
		t.Error("RequestPing should be valid")
	}
	if ValidRequest(requestCount) {
		t.Error("requestCount should not be a valid request")
	}
	if !ValidReply(ReplySuccess) || !ValidReply(ReplyInvalidValue) {
		t.Error("known replies reported invalid")
	}
	if ValidReply(RequestPing) {
		t.Error("a request ID should not be a valid reply")
	}
}
