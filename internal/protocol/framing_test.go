package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/suite"
)

type FramingSuite struct {
	suite.Suite
}

func TestFramingSuite(t *testing.T) {
	suite.Run(t, new(FramingSuite))
}

func (s *FramingSuite) TestRoundTrip() {
	msg, err := NewMessage(TypeConnect, "", ConnectData{PlayerName: "Alice"})
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(WriteMessage(&buf, msg))

	got, err := ReadMessage(&buf)
	s.Require().NoError(err)
	s.Equal(msg.MessageID, got.MessageID)
	s.Equal(TypeConnect, got.Type)

	var payload ConnectData
	s.Require().NoError(got.DecodePayload(&payload))
	s.Equal("Alice", payload.PlayerName)
}

func (s *FramingSuite) TestHeaderIsLittleEndian() {
	msg := MustMessage(TypeGetRooms, "p1", nil)

	var buf bytes.Buffer
	s.Require().NoError(WriteMessage(&buf, msg))

	raw := buf.Bytes()
	s.Require().GreaterOrEqual(len(raw), 4)
	declared := binary.LittleEndian.Uint32(raw[:4])
	s.Equal(len(raw)-4, int(declared))
}

func (s *FramingSuite) TestPartialReads() {
	msg := MustMessage(TypeConnect, "", ConnectData{PlayerName: "Bob"})

	var buf bytes.Buffer
	s.Require().NoError(WriteMessage(&buf, msg))

	// One byte at a time, as a slow TCP peer would deliver it
	got, err := ReadMessage(iotest.OneByteReader(&buf))
	s.Require().NoError(err)
	s.Equal(msg.MessageID, got.MessageID)
}

func (s *FramingSuite) TestZeroLengthFrame() {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})

	_, err := ReadMessage(buf)
	s.ErrorIs(err, ErrBadFrame)
	s.ErrorIs(err, ErrInvalidFrameLength)
}

func (s *FramingSuite) TestNegativeLengthFrame() {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], 0xFFFFFFFF)

	_, err := ReadMessage(bytes.NewReader(header[:]))
	s.ErrorIs(err, ErrInvalidFrameLength)
}

func (s *FramingSuite) TestOversizedFrameIsDrainedAndRecoverable() {
	oversize := MaxFrameSize + 1

	var buf bytes.Buffer
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(oversize))
	buf.Write(header[:])
	buf.Write(make([]byte, oversize))

	// A well-formed frame follows the oversized one
	next := MustMessage(TypeConnect, "", ConnectData{PlayerName: "Carol"})
	s.Require().NoError(WriteMessage(&buf, next))

	_, err := ReadMessage(&buf)
	s.ErrorIs(err, ErrFrameTooLarge)
	s.ErrorIs(err, ErrBadFrame)

	// The stream stayed in sync: the next frame still parses
	got, err := ReadMessage(&buf)
	s.Require().NoError(err)
	s.Equal(next.MessageID, got.MessageID)
}

func (s *FramingSuite) TestInvalidJSONIsRecoverable() {
	body := []byte("not json at all")

	var buf bytes.Buffer
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	buf.Write(header[:])
	buf.Write(body)

	_, err := ReadMessage(&buf)
	s.ErrorIs(err, ErrBadFrame)
	s.NotErrorIs(err, ErrFrameTooLarge)
}

func (s *FramingSuite) TestTruncatedBodyIsFatal() {
	var buf bytes.Buffer
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], 100)
	buf.Write(header[:])
	buf.Write([]byte("{")) // far short of the declared 100 bytes

	_, err := ReadMessage(&buf)
	s.Require().Error(err)
	s.NotErrorIs(err, ErrBadFrame)
	s.ErrorIs(err, io.ErrUnexpectedEOF)
}

func (s *FramingSuite) TestEOFAtFrameBoundary() {
	_, err := ReadMessage(bytes.NewReader(nil))
	s.ErrorIs(err, io.EOF)
}
