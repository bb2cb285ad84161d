package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the sanity ceiling on a declared frame length
const MaxFrameSize = 10 << 20 // 10 MiB

// ErrBadFrame marks recoverable framing errors: the stream is still in sync
// and the caller may keep reading. Any other read error is a transport
// failure and the connection should be torn down.
var ErrBadFrame = errors.New("bad frame")

var (
	ErrInvalidFrameLength = fmt.Errorf("%w: non-positive length", ErrBadFrame)
	ErrFrameTooLarge      = fmt.Errorf("%w: length above ceiling", ErrBadFrame)
)

// WriteMessage frames and writes a single message: a 4-byte little-endian
// length prefix followed by the UTF-8 JSON body, in one Write call so that
// callers serialising writes with a lock never interleave partial frames.
func WriteMessage(w io.Writer, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if len(body) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed message, looping until the full
// declared length has arrived (partial reads are expected on TCP).
//
// Frames with a non-positive declared length are rejected without consuming
// anything further; oversized frames are drained so the stream stays in
// sync. Both cases surface as ErrBadFrame wrapped errors, as does a body
// that is not valid JSON.
func ReadMessage(r io.Reader) (*Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := int32(binary.LittleEndian.Uint32(header[:]))
	if length <= 0 {
		return nil, fmt.Errorf("%w (%d)", ErrInvalidFrameLength, length)
	}
	if length > MaxFrameSize {
		if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w (%d)", ErrFrameTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	return &msg, nil
}
