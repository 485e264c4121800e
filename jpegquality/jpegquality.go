// Package jpegquality estimates the quality setting a JPEG image was encoded
// with by comparing its quantization tables against the standard IJG tables.
package jpegquality

import (
	"bytes"
	"errors"
	"io"
)

var (
	ErrInvalidJPEG  = errors.New("invalid JPEG header")
	ErrWrongTable   = errors.New("wrong size for quantization table")
	ErrShortSegment = errors.New("short segment length")
	ErrShortDQT     = errors.New("section DQT is too short")
)

const (
	soiMarker = 0xffd8
	eoiMarker = 0xffd9
	sosMarker = 0xffda
	dqtMarker = 0xffdb
)

// Standard quantization tables from the JPEG specification, in zigzag order
// as they appear in the DQT segment.
var unscaledQuant = [2][64]int{
	// Luminance.
	{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	},
	// Chrominance.
	{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	},
}

type jpegReader struct {
	rs      io.ReadSeeker
	quality int
}

// New reads JPEG structure from rs and estimates encoding quality from the
// first luminance quantization table found.
func New(rs io.ReadSeeker) (*jpegReader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	jr := &jpegReader{rs: rs}
	if jr.readMarker() != soiMarker {
		return nil, ErrInvalidJPEG
	}

	for {
		marker := jr.readMarker()
		switch marker {
		case 0:
			return nil, ErrInvalidJPEG
		case eoiMarker, sosMarker:
			// entropy coded data starts, no more tables ahead
			return nil, ErrShortDQT
		}

		length := jr.readLength()
		if length < 2 {
			return nil, ErrShortSegment
		}

		if marker != dqtMarker {
			if _, err := rs.Seek(int64(length-2), io.SeekCurrent); err != nil {
				return nil, err
			}
			continue
		}

		data := make([]byte, length-2)
		if _, err := io.ReadFull(rs, data); err != nil {
			return nil, ErrShortDQT
		}
		if err := jr.parseDQT(data); err != nil {
			return nil, err
		}
		return jr, nil
	}
}

// NewWithBytes is New for in-memory images.
func NewWithBytes(data []byte) (*jpegReader, error) {
	return New(bytes.NewReader(data))
}

// Quality returns estimated encoding quality in the 1 to 100 range.
func (jr *jpegReader) Quality() int {
	return jr.quality
}

// readMarker returns the next two bytes as a big endian marker, 0 on failure.
func (jr *jpegReader) readMarker() uint16 {
	var buf [2]byte
	if _, err := io.ReadFull(jr.rs, buf[:]); err != nil {
		return 0
	}
	return uint16(buf[0])<<8 | uint16(buf[1])
}

// readLength returns segment length including the length field itself, -1 on
// failure.
func (jr *jpegReader) readLength() int {
	var buf [2]byte
	if _, err := io.ReadFull(jr.rs, buf[:]); err != nil {
		return -1
	}
	return int(buf[0])<<8 | int(buf[1])
}

// parseDQT walks quantization tables inside one DQT segment. The luminance
// table wins when present, otherwise the first table is used.
func (jr *jpegReader) parseDQT(data []byte) error {
	for len(data) > 0 {
		precision := data[0] >> 4
		id := data[0] & 0x0f
		if precision > 1 {
			return ErrWrongTable
		}

		n := 64
		if precision == 1 {
			n = 128
		}
		if len(data) < 1+n {
			return ErrShortDQT
		}

		table := make([]int, 64)
		for i := range 64 {
			if precision == 1 {
				table[i] = int(data[1+2*i])<<8 | int(data[2+2*i])
			} else {
				table[i] = int(data[1+i])
			}
		}

		q := estimateQuality(table, id)
		if jr.quality == 0 || id == 0 {
			jr.quality = q
		}
		if id == 0 {
			return nil
		}
		data = data[1+n:]
	}
	return nil
}

// estimateQuality inverts the IJG table scaling: derive the average scale
// factor relative to the standard table and map it back to quality.
func estimateQuality(table []int, id byte) int {
	std := unscaledQuant[0]
	if id != 0 {
		std = unscaledQuant[1]
	}

	sum := 0
	for i, v := range table {
		if v < 1 {
			v = 1
		}
		sum += 100 * v / std[i]
	}
	scale := sum / 64

	var quality int
	if scale <= 100 {
		quality = (200 - scale) / 2
	} else {
		quality = 5000 / scale
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return quality
}
