package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

const utf8Name = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// aliases maps common non-IANA spellings onto registered names.
var aliases = map[string]string{
	"utf8":    utf8Name,
	"latin-1": "iso-8859-1",
	"latin1":  "iso-8859-1",
	"cp1252":  "windows-1252",
}

// Decoder turns the raw bytes of a file into UTF-8 text or fails without a
// partial result.
type Decoder interface {
	Name() string
	Decode(data []byte) ([]byte, error)
}

type utf8Decoder struct{}

func (utf8Decoder) Name() string { return utf8Name }

func (utf8Decoder) Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("input is not valid %s", utf8Name)
	}
	return data, nil
}

// charsetDecoder wraps a single-byte x/text encoding. Bytes the charset
// leaves undefined decode to U+FFFD, which counts as a failure.
type charsetDecoder struct {
	name string
	enc  encoding.Encoding
}

func (d charsetDecoder) Name() string { return d.name }

func (d charsetDecoder) Decode(data []byte) ([]byte, error) {
	out, err := d.enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode as %s: %w", d.name, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return nil, fmt.Errorf("input contains bytes undefined in %s", d.name)
	}
	return out, nil
}

// ResolveDecoder returns the decoder registered under name. Names are matched
// case-insensitively against the IANA registry plus a few common aliases.
func ResolveDecoder(name string) (Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if key == utf8Name {
		return utf8Decoder{}, nil
	}

	// charmap covers the usual spreadsheet exports without an index lookup.
	switch key {
	case "windows-1252":
		return charsetDecoder{name: key, enc: charmap.Windows1252}, nil
	case "iso-8859-1":
		return charsetDecoder{name: key, enc: charmap.ISO8859_1}, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return charsetDecoder{name: key, enc: enc}, nil
}

// ResolveDecoders resolves every name in order
func ResolveDecoders(names []string) ([]Decoder, error) {
	decoders := make([]Decoder, 0, len(names))
	for _, name := range names {
		d, err := ResolveDecoder(name)
		if err != nil {
			return nil, err
		}
		decoders = append(decoders, d)
	}
	return decoders, nil
}
