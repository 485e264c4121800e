package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

type DpiType uint8

const (
	DpiNoUnits DpiType = iota
	DpiPxPerInch
	DpiPxPerSm
)

var (
	soiMarker  = []byte{0xFF, 0xD8}
	app0Marker = []byte{0xFF, 0xE0}
	jfifHeader = []byte{0x4A, 0x46, 0x49, 0x46, 0x00, 0x01, 0x02} // "JFIF\0" + version 1.2
)

// EnsureJFIFAPP0 inserts JFIF APP0 marker segment if it is missing.
// Some reader applications refuse JPEG covers without it.
func EnsureJFIFAPP0(jpegData []byte, dpit DpiType, xdensity, ydensity int16) ([]byte, bool, error) {
	if len(jpegData) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if !bytes.HasPrefix(jpegData, soiMarker) {
		return nil, false, errors.New("not a jpeg")
	}
	if bytes.Equal(jpegData[2:4], app0Marker) {
		// already there
		return jpegData, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Write(soiMarker)
	buf.Write(app0Marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10)) // segment length
	buf.Write(jfifHeader)
	_ = binary.Write(buf, binary.BigEndian, uint8(dpit))
	_ = binary.Write(buf, binary.BigEndian, uint16(xdensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(ydensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail
	buf.Write(jpegData[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEGWithDPI encodes img at the given quality and stamps the result
// with a JFIF segment carrying the requested density.
func EncodeJPEGWithDPI(img image.Image, quality int, dpit DpiType, xdensity, ydensity int16) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	out, _, err := EnsureJFIFAPP0(buf.Bytes(), dpit, xdensity, ydensity)
	if err != nil {
		return nil, err
	}
	return out, nil
}
