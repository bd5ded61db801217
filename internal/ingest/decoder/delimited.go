package decoder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/crimson-sun/latewatch/internal/model"
)

// decodeDelimited parses quoted, comma-separated text (CRLF or LF line
// endings, embedded delimiters and newlines inside quotes). Row 0 is the
// header. Stray quotes inside unquoted cells (a nickname in a name, say)
// are kept as text.
func decodeDelimited(text []byte) (model.Grid, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var raw [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Grid{}, fmt.Errorf("%w: delimited text: %v", ErrDecodeFailure, err)
		}
		raw = append(raw, rec)
	}
	return arrayGrid(raw), nil
}

// sniffDelimiter looks at the first line only. Commas win; semicolon and
// tab exports are picked up when the header has no comma at all.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	switch {
	case bytes.IndexByte(line, ',') >= 0:
		return ','
	case bytes.IndexByte(line, ';') >= 0:
		return ';'
	case bytes.IndexByte(line, '\t') >= 0:
		return '\t'
	default:
		return ','
	}
}
