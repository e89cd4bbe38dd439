package link

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/sweeney/splitkbd/internal/hid"
)

// Frame layout:
//   Origin(1) | Kind(1) | Report(8) | Usage(2) | Layer(1) | Mask(1) | Conn(1) | CRC32(4) | Terminal(1)
// Multi-byte fields are little-endian. The CRC covers the 15 body bytes.
const (
	frameBodySize = 15
	crcSize       = 4
	terminalSize  = 1

	// FrameSize is the fixed on-wire size of every message.
	FrameSize = frameBodySize + crcSize + terminalSize

	// frameTerminal is appended to the end of every frame.
	frameTerminal = 0x55
)

var (
	ErrFrameTooShort = errors.New("link: frame too short")
	ErrBadChecksum   = errors.New("link: checksum mismatch")
	ErrBadTerminal   = errors.New("link: bad terminal byte")
)

// Encode serializes m into a fixed-size frame.
func Encode(m Message) []byte {
	buf := make([]byte, FrameSize)
	buf[0] = byte(m.Origin)
	buf[1] = byte(m.Kind)
	copy(buf[2:10], m.Report.Bytes())
	binary.LittleEndian.PutUint16(buf[10:12], m.Usage)
	buf[12] = m.Layer
	buf[13] = m.Mask
	if m.Conn {
		buf[14] = 1
	}
	binary.LittleEndian.PutUint32(buf[15:19], crc32.ChecksumIEEE(buf[:frameBodySize]))
	buf[FrameSize-1] = frameTerminal
	return buf
}

// Decode parses a frame produced by Encode.
func Decode(data []byte) (Message, error) {
	if len(data) < FrameSize {
		return Message{}, ErrFrameTooShort
	}
	if data[FrameSize-1] != frameTerminal {
		return Message{}, ErrBadTerminal
	}
	want := binary.LittleEndian.Uint32(data[15:19])
	if got := crc32.ChecksumIEEE(data[:frameBodySize]); got != want {
		return Message{}, ErrBadChecksum
	}

	return Message{
		Origin: Role(data[0]),
		Kind:   Kind(data[1]),
		Report: hid.ReportFromBytes(data[2:10]),
		Usage:  binary.LittleEndian.Uint16(data[10:12]),
		Layer:  data[12],
		Mask:   data[13],
		Conn:   data[14] != 0,
	}, nil
}
