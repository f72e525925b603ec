package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledger/internal/encoding"
)

func decodeAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	d, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(d)
	require.NoError(t, err)

	return string(got), d.Charset
}

func TestDecode(t *testing.T) {
	const header = "date,description,category\n2024-03-01,Café Ação,Comida\n"

	tests := []struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}{
		{
			name:        "UTF8Passthrough",
			input:       []byte(header),
			want:        header,
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, header...),
			want:        header,
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'o', 0, 'k', 0, '\n', 0},
			want:        "ok\n",
			wantCharset: encoding.CharsetUTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0, 'o', 0, 'k', 0, '\n'},
			want:        "ok\n",
			wantCharset: encoding.CharsetUTF16BE,
		},
		{
			name:  "Empty",
			input: nil,
			want:  "",
			// An empty input is valid UTF-8.
			wantCharset: encoding.CharsetUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decodeAll(t, tt.input)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}

func TestDecode_Latin1(t *testing.T) {
	// "Descrição;Montante\n" in Windows-1252: ç = 0xE7, ã = 0xE3.
	input := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	got, charset := decodeAll(t, input)

	assert.Equal(t, "Descrição;Montante\n", got)
	assert.NotEqual(t, encoding.CharsetUTF8, charset)
}

func TestDecode_MultiByteRuneOnSniffBoundary(t *testing.T) {
	// Put a two-byte "ç" across the 4096-byte sniff window.
	input := strings.Repeat("a", 4095) + "ç\n"

	got, charset := decodeAll(t, []byte(input))

	assert.Equal(t, input, got)
	assert.Equal(t, encoding.CharsetUTF8, charset)
}
