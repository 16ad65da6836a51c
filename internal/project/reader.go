package project

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadScript reads a script file and returns its text as UTF-8. SSDT saves
// scripts as UTF-16 or BOM'd UTF-8 depending on editor settings, so all
// three BOMs are honored; BOM-less files are assumed UTF-8.
func ReadScript(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return DecodeScript(raw)
}

// DecodeScript converts raw script bytes to a UTF-8 string, honoring a
// leading byte-order mark.
func DecodeScript(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeUTF16(raw, unicode.LittleEndian)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeUTF16(raw, unicode.BigEndian)
	default:
		return string(raw), nil
	}
}

func decodeUTF16(raw []byte, endian unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decoding utf-16 script: %w", err)
	}
	return string(out), nil
}
