package studio

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// srcEncoding is a BOM derived encoding of a source document.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// docKind tells how a source file should be interpreted on import.
type docKind int

const (
	docUnknown docKind = iota
	docText
	docHTML
)

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF recognizes unicode encoding by BOM. UTF-32 LE has to be checked
// before UTF-16 LE since the latter's BOM is a prefix of the former's.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	default:
		return encUnknown
	}
}

// selectReader wraps source reader with a decoder matching detected encoding.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder().Reader(r)
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Reader(r)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Reader(r)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder().Reader(r)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder().Reader(r)
	default:
		panic("unsupported source encoding")
	}
}

// isArchiveFile reports whether path points to a zip archive. Extension is
// checked first to avoid reading files which cannot be of interest.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}

	t, err := filetype.Match(buf[:n])
	if err != nil {
		return false, err
	}
	return t.Extension == "zip", nil
}

func kindForName(name string) docKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return docText
	case ".html", ".htm", ".xhtml":
		return docHTML
	default:
		return docUnknown
	}
}

// isSourceFile reports whether path points to an importable manuscript
// document and detects its unicode encoding when a BOM is present.
func isSourceFile(path string) (docKind, srcEncoding, error) {
	kind := kindForName(path)
	if kind == docUnknown {
		return docUnknown, encUnknown, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return docUnknown, encUnknown, err
	}
	defer file.Close()

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return docUnknown, encUnknown, err
	}
	return kind, detectUTF(buf[:n]), nil
}

// isSourceInArchive is isSourceFile for a zip archive entry.
func isSourceInArchive(f *zip.File) (docKind, srcEncoding, error) {
	kind := kindForName(f.FileHeader.Name)
	if kind == docUnknown {
		return docUnknown, encUnknown, nil
	}

	r, err := f.Open()
	if err != nil {
		return docUnknown, encUnknown, err
	}
	defer r.Close()

	buf := make([]byte, 4)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return docUnknown, encUnknown, err
	}
	return kind, detectUTF(buf[:n]), nil
}
