package model

// Mode is the decoder's output shape.
type Mode int

const (
	// ArrayMode rows are positional; the grid header names the columns.
	ArrayMode Mode = iota
	// ObjectMode rows are keyed; every row carries its own key list.
	ObjectMode
)

func (m Mode) String() string {
	switch m {
	case ArrayMode:
		return "array"
	case ObjectMode:
		return "object"
	default:
		return "unknown"
	}
}

// Row is one logical data row. Cells are already normalized to text
// (JSON null becomes ""). In ObjectMode Keys is parallel to Cells and
// preserves the source key order; in ArrayMode Keys is nil.
type Row struct {
	Keys  []string
	Cells []string
}

// Labels returns the column labels this row should be resolved against:
// its own keys in ObjectMode, the shared header otherwise.
func (r Row) Labels(header []string) []string {
	if r.Keys != nil {
		return r.Keys
	}
	return header
}

// Cell returns the cell at index i, or "" when i is out of range.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Grid is the decoded tabular input. In ArrayMode every row (and the
// header) is padded to the same width; Rows never includes the header.
type Grid struct {
	Mode   Mode
	Header []string
	Rows   []Row
}

// Width returns the ArrayMode column count.
func (g Grid) Width() int {
	return len(g.Header)
}

// Empty reports whether the grid has no data rows.
func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}
