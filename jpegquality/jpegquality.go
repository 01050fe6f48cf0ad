// Package jpegquality estimates the encoding quality of a JPEG stream
// from its quantization tables, without decoding image data.
package jpegquality

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	ErrInvalidJPEG = errors.New("invalid JPEG data")
	ErrNoDQT       = errors.New("no quantization table found")
)

// Annex K luminance quantization table, zig-zag order does not matter for
// the sum-based estimate.
var stdLuminance = [64]int{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var stdChrominance = [64]int{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// Reader holds the quality estimated while scanning the stream.
type Reader struct {
	quality int
}

// New scans the JPEG stream and estimates its encoding quality.
func New(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewWithBytes(data)
}

// NewWithBytes scans an in-memory JPEG and estimates its encoding quality.
func NewWithBytes(data []byte) (*Reader, error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, ErrInvalidJPEG
	}
	q, err := scanQuality(data[2:])
	if err != nil {
		return nil, err
	}
	return &Reader{quality: q}, nil
}

// Quality returns the estimated encoder quality setting, 1..100.
func (r *Reader) Quality() int {
	return r.quality
}

// scanQuality walks marker segments until the first DQT and inverts the
// IJG scaling formula on the tables it carries.
func scanQuality(data []byte) (int, error) {
	buf := bytes.NewReader(data)
	for {
		marker, err := nextMarker(buf)
		if err != nil {
			return 0, err
		}
		switch marker {
		case 0xd9: // EOI
			return 0, ErrNoDQT
		case 0xdb: // DQT
			return qualityFromDQT(buf)
		case 0x01, 0xd0, 0xd1, 0xd2, 0xd3, 0xd4, 0xd5, 0xd6, 0xd7:
			// standalone markers carry no payload
			continue
		}
		var length uint16
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return 0, eof(err)
		}
		if length < 2 {
			return 0, ErrInvalidJPEG
		}
		if _, err := buf.Seek(int64(length-2), io.SeekCurrent); err != nil {
			return 0, ErrInvalidJPEG
		}
	}
}

func nextMarker(buf *bytes.Reader) (byte, error) {
	b, err := buf.ReadByte()
	if err != nil {
		return 0, eof(err)
	}
	if b != 0xff {
		return 0, ErrInvalidJPEG
	}
	for {
		m, err := buf.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		if m != 0xff { // fill bytes are legal before a marker
			return m, nil
		}
	}
}

func qualityFromDQT(buf *bytes.Reader) (int, error) {
	var length uint16
	if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
		return 0, eof(err)
	}
	remaining := int(length) - 2

	bestScale := -1
	for remaining > 0 {
		pq, err := buf.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		remaining--
		precision := int(pq >> 4) // 0: 8-bit, 1: 16-bit entries
		id := int(pq & 0x0f)

		var observed, base int
		std := stdLuminance
		if id != 0 {
			std = stdChrominance
		}
		for i := range 64 {
			var v int
			if precision == 0 {
				b, err := buf.ReadByte()
				if err != nil {
					return 0, eof(err)
				}
				remaining--
				v = int(b)
			} else {
				var w uint16
				if err := binary.Read(buf, binary.BigEndian, &w); err != nil {
					return 0, eof(err)
				}
				remaining -= 2
				v = int(w)
			}
			observed += v
			base += std[i]
		}

		// invert Tq = (base*S + 50) / 100: the summed ratio approximates
		// the scale factor S
		scale := (observed*100 + base/2) / base
		if scale > bestScale {
			bestScale = scale
		}
	}
	if bestScale < 0 {
		return 0, ErrNoDQT
	}

	var quality int
	if bestScale <= 100 {
		quality = (200 - bestScale) / 2
	} else {
		quality = 5000 / bestScale
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return quality, nil
}

func eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("truncated JPEG data")
	}
	return err
}
