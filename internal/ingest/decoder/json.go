package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/crimson-sun/latewatch/internal/model"
)

// wrapperKeys are the object fields unwrapped when they hold a sequence,
// in priority order.
var wrapperKeys = []string{"data", "records"}

// decodeJSON reports ok=false when text is not a single JSON value, so the
// caller can fall back to delimited text. A body that opens like a JSON
// object or array but does not parse is a decode failure, unless ct
// declares delimited text.
func decodeJSON(text []byte, ct string) (model.Grid, bool, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return model.Grid{}, false, nil
	}
	if !json.Valid(trimmed) {
		if looksJSON(trimmed) && !isDelimitedType(ct) {
			var v any
			err := json.Unmarshal(trimmed, &v)
			return model.Grid{}, true, fmt.Errorf("%w: malformed JSON: %v", ErrDecodeFailure, err)
		}
		return model.Grid{}, false, nil
	}
	grid, err := fromValue(trimmed)
	if err != nil {
		return model.Grid{}, true, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return grid, true, nil
}

func looksJSON(b []byte) bool {
	return b[0] == '{' || b[0] == '['
}

func isDelimitedType(ct string) bool {
	return strings.Contains(ct, "csv") || strings.Contains(ct, "tab-separated")
}

// fromValue detects the shape of a valid JSON value: sequence, wrapped
// sequence, single object, or scalar (no rows).
func fromValue(raw json.RawMessage) (model.Grid, error) {
	switch firstByte(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return model.Grid{}, err
		}
		return fromSequence(items)
	case '{':
		keys, vals, err := orderedObject(raw)
		if err != nil {
			return model.Grid{}, err
		}
		for _, wk := range wrapperKeys {
			for i, k := range keys {
				if k == wk && firstByte(vals[i]) == '[' {
					return fromValue(vals[i])
				}
			}
		}
		return model.Grid{Mode: model.ObjectMode, Rows: []model.Row{objectRow(keys, vals)}}, nil
	default:
		return model.Grid{Mode: model.ObjectMode}, nil
	}
}

// fromSequence picks ArrayMode when element 0 is itself a sequence,
// ObjectMode otherwise.
func fromSequence(items []json.RawMessage) (model.Grid, error) {
	if len(items) == 0 {
		return model.Grid{Mode: model.ObjectMode}, nil
	}

	if firstByte(items[0]) == '[' {
		raw := make([][]string, 0, len(items))
		for _, item := range items {
			cells, err := arrayCells(item)
			if err != nil {
				return model.Grid{}, err
			}
			raw = append(raw, cells)
		}
		return arrayGrid(raw), nil
	}

	rows := make([]model.Row, 0, len(items))
	for _, item := range items {
		if firstByte(item) != '{' {
			// Not addressable by key; the normalizer rejects it.
			rows = append(rows, model.Row{Keys: []string{}})
			continue
		}
		keys, vals, err := orderedObject(item)
		if err != nil {
			return model.Grid{}, err
		}
		rows = append(rows, objectRow(keys, vals))
	}
	return model.Grid{Mode: model.ObjectMode, Rows: rows}, nil
}

func arrayCells(item json.RawMessage) ([]string, error) {
	if firstByte(item) != '[' {
		return []string{cellText(item)}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(item, &elems); err != nil {
		return nil, err
	}
	cells := make([]string, len(elems))
	for i, e := range elems {
		cells[i] = cellText(e)
	}
	return cells, nil
}

func objectRow(keys []string, vals []json.RawMessage) model.Row {
	cells := make([]string, len(vals))
	for i, v := range vals {
		cells[i] = cellText(v)
	}
	if keys == nil {
		keys = []string{}
	}
	return model.Row{Keys: keys, Cells: cells}
}

// orderedObject returns an object's keys and raw values in document order.
// Duplicate keys are kept; the resolver takes the first match.
func orderedObject(raw json.RawMessage) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var keys []string
	var vals []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("object key is %T", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		vals = append(vals, v)
	}
	return keys, vals, nil
}

// cellText normalizes a JSON scalar to text. null becomes "", numbers use
// their shortest decimal form, nested values are kept as compact JSON.
func cellText(raw json.RawMessage) string {
	switch firstByte(raw) {
	case 0, 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 't':
		return "true"
	case 'f':
		return "false"
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		s := string(bytes.TrimSpace(raw))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s
	}
}

func firstByte(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}
