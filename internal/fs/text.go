package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	textDetectionSampleSize      = 4096
	nonPrintableThresholdPercent = 30
)

type unicodeEncoding int

const (
	encodingUnknown unicodeEncoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

var binaryExtensions = map[string]struct{}{
	".7z":    {},
	".bin":   {},
	".bmp":   {},
	".bz2":   {},
	".class": {},
	".dll":   {},
	".doc":   {},
	".docx":  {},
	".dylib": {},
	".exe":   {},
	".gif":   {},
	".gz":    {},
	".ico":   {},
	".jpeg":  {},
	".jpg":   {},
	".mp3":   {},
	".mp4":   {},
	".pdf":   {},
	".png":   {},
	".so":    {},
	".tar":   {},
	".wasm":  {},
	".webp":  {},
	".woff2": {},
	".xz":    {},
	".zip":   {},
}

// DefaultSourceLimit caps how much of a source file ReadSource accepts.
const DefaultSourceLimit int64 = 8 << 20

var (
	// ErrBinaryContent is returned when a source file does not look like text.
	ErrBinaryContent = errors.New("source is not a text file")
	// ErrTooLarge is returned when a source file exceeds the read limit.
	ErrTooLarge = errors.New("source exceeds size limit")
)

// ReadSource reads a markup source file and decodes it to UTF-8. A limit of
// zero or less selects DefaultSourceLimit.
func ReadSource(path string, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultSourceLimit
	}
	content, err := ReadFileHead(path, limit+1)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(content)) > limit {
		return "", fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, limit)
	}
	if !IsTextFile(path, content) {
		return "", fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}
	return NormalizeTextContent(content), nil
}

// DecodeSource applies the same checks as ReadSource to content that was
// already read, for example from stdin.
func DecodeSource(content []byte) (string, error) {
	if !IsTextFile("", content) {
		return "", ErrBinaryContent
	}
	return NormalizeTextContent(content), nil
}

// IsTextFile reports whether content looks like text. A non-empty path with a
// known binary extension is rejected before sniffing.
func IsTextFile(path string, content []byte) bool {
	if looksBinaryByExtension(path) {
		return false
	}

	if len(content) == 0 {
		return true
	}

	sample := content
	if len(sample) > textDetectionSampleSize {
		sample = sample[:textDetectionSampleSize]
	}

	if enc := detectUnicodeEncoding(sample); enc != encodingUnknown {
		return true
	}

	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}

	if utf8.Valid(sample) {
		return true
	}

	printable := 0
	nonPrintable := 0
	for _, b := range sample {
		if isCommonTextByte(b) {
			printable++
		} else {
			nonPrintable++
		}
	}

	if printable == 0 {
		return false
	}

	return nonPrintable*100/len(sample) < nonPrintableThresholdPercent
}

// ReadFileHead returns up to limit bytes from the beginning of path.
func ReadFileHead(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return io.ReadAll(io.LimitReader(f, limit))
}

func looksBinaryByExtension(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := binaryExtensions[ext]
	return ok
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == 0x09 || b == 0x0A || b == 0x0D:
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	case b == 0x1B:
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

func detectUnicodeEncoding(sample []byte) unicodeEncoding {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return encodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return encodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return encodingUTF16BE
		}
	}
	return encodingUnknown
}

// NormalizeTextContent converts known Unicode BOM-encoded content into UTF-8 strings.
func NormalizeTextContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	switch detectUnicodeEncoding(content) {
	case encodingUTF8BOM:
		return string(content[3:])
	case encodingUTF16LE:
		return decodeUTF16(content, unicode.LittleEndian)
	case encodingUTF16BE:
		return decodeUTF16(content, unicode.BigEndian)
	default:
		return string(content)
	}
}

func decodeUTF16(content []byte, endian unicode.Endianness) string {
	decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, err := decoder.Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}
