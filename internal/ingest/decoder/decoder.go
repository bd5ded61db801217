// Package decoder turns a raw feed body into a model.Grid. It accepts JSON
// (array of arrays, array of objects, or an object wrapping either under
// "data"/"records"), delimited text, and xlsx workbooks, and classifies
// login pages as ErrAuthRequired.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/crimson-sun/latewatch/internal/model"
)

var (
	// ErrAuthRequired means the upstream answered with a markup page,
	// typically a login wall. Terminal for the fetch.
	ErrAuthRequired = errors.New("auth required")

	// ErrDecodeFailure means the body is neither JSON nor parseable
	// delimited text.
	ErrDecodeFailure = errors.New("decode failure")
)

// AuthError describes a markup response. It matches ErrAuthRequired.
type AuthError struct {
	ContentType string
	Title       string // <title> of the page, if any
}

func (e *AuthError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("auth required: upstream returned %q (%s)", e.Title, e.ContentType)
	}
	return fmt.Sprintf("auth required: upstream returned %s", e.ContentType)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthRequired
}

// Decode converts body into a grid. contentType may be empty.
// An empty or header-only body yields an empty grid and no error.
func Decode(body []byte, contentType string) (model.Grid, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))

	if isMarkupType(ct) {
		return model.Grid{}, newAuthError(contentType, body)
	}
	if isSpreadsheet(ct, body) {
		return decodeWorkbook(body)
	}

	text, err := toUTF8(body)
	if err != nil {
		return model.Grid{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	if grid, ok, err := decodeJSON(text, ct); ok {
		return grid, err
	}
	if sniffMarkup(ct, text) {
		return model.Grid{}, newAuthError("text/html", text)
	}
	return decodeDelimited(text)
}

// toUTF8 strips a UTF-8 BOM and transcodes BOM-marked UTF-16 to UTF-8.
func toUTF8(body []byte) ([]byte, error) {
	if !hasBOM(body) {
		return body, nil
	}
	t := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(t, body)
	return out, err
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE})
}

// pad widens the header and every row to the widest row seen.
func pad(header []string, rows []model.Row) ([]string, []model.Row) {
	width := len(header)
	for _, r := range rows {
		if len(r.Cells) > width {
			width = len(r.Cells)
		}
	}
	header = padCells(header, width)
	for i := range rows {
		rows[i].Cells = padCells(rows[i].Cells, width)
	}
	return header, rows
}

func padCells(cells []string, width int) []string {
	if len(cells) >= width {
		return cells
	}
	out := make([]string, width)
	copy(out, cells)
	return out
}

// arrayGrid builds an ArrayMode grid from raw rows, treating row 0 as the header.
func arrayGrid(raw [][]string) model.Grid {
	if len(raw) == 0 {
		return model.Grid{Mode: model.ArrayMode}
	}
	rows := make([]model.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		rows = append(rows, model.Row{Cells: cells})
	}
	header, rows := pad(raw[0], rows)
	return model.Grid{Mode: model.ArrayMode, Header: header, Rows: rows}
}
