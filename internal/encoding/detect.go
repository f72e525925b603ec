// Package encoding turns CSV exports of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88599    = "ISO-8859-9"
	CharsetISO885915   = "ISO-8859-15"

	sniffSize = 4096
)

var boms = []struct {
	prefix  []byte
	charset string
	enc     xencoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, CharsetUTF8, nil},
	{[]byte{0xFF, 0xFE}, CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// legacy maps chardet results to the single-byte decoders ledger exports are
// known to use. Latin-1 is read as Windows-1252, its superset.
var legacy = map[string]xencoding.Encoding{
	"ISO-8859-1":       charmap.Windows1252,
	CharsetWindows1252: charmap.Windows1252,
	CharsetISO88599:    charmap.ISO8859_9,
	CharsetISO885915:   charmap.ISO8859_15,
}

// Decoded is a UTF-8 view of an input along with the charset it was read as.
type Decoded struct {
	io.Reader
	Charset string
}

// Decode sniffs the start of r and returns a reader yielding UTF-8.
//
// A byte order mark wins. Otherwise valid UTF-8 passes through unchanged,
// then chardet is asked, and anything it cannot place is read as
// Windows-1252.
func Decode(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("sniffing charset: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.enc == nil {
			_, _ = br.Discard(len(bom.prefix))
			return &Decoded{Reader: br, Charset: bom.charset}, nil
		}

		return decoded(br, bom.enc, bom.charset), nil
	}

	if utf8.Valid(trimPartialRune(head)) {
		return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == CharsetUTF8 {
			return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
		}

		if enc, ok := legacy[res.Charset]; ok {
			return decoded(br, enc, res.Charset), nil
		}
	}

	return decoded(br, charmap.Windows1252, CharsetWindows1252), nil
}

func decoded(r io.Reader, enc xencoding.Encoding, charset string) *Decoded {
	return &Decoded{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}
