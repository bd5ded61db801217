// Package schema maps the five record roles onto concrete columns by
// case-insensitive substring matching against a fixed synonym table.
package schema

import (
	"strconv"
	"strings"

	"github.com/crimson-sun/latewatch/internal/model"
)

// Synonyms lists the label fragments accepted for one role.
type Synonyms struct {
	Role       model.Role
	Candidates []string
}

// DefaultTable covers the Malay and English headings seen in school
// attendance sheets.
var DefaultTable = []Synonyms{
	{model.RoleTimestamp, []string{"timestamp", "tarikh", "masa", "date", "waktu"}},
	{model.RoleIdentifier, []string{"id", "no", "matrik"}},
	{model.RoleName, []string{"name", "nama", "murid", "pelajar"}},
	{model.RoleGroup, []string{"class", "kelas", "tingkatan", "group"}},
	{model.RoleReason, []string{"reason", "sebab", "punca", "alas", "cause"}},
}

// Resolver builds field schemas from column labels. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	table []Synonyms
}

// New creates a Resolver over table. A nil table means DefaultTable.
func New(table []Synonyms) *Resolver {
	if table == nil {
		table = DefaultTable
	}
	return &Resolver{table: table}
}

// Resolve maps every role in the table to the first label containing one
// of its candidates. Labels are scanned in order; the synonym order does
// not matter. Unmatched roles stay unresolved.
func (r *Resolver) Resolve(labels []string) model.FieldSchema {
	s := model.NewFieldSchema()
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}
	for _, syn := range r.table {
		if i := Match(lowered, syn.Candidates); i >= 0 {
			s.Set(syn.Role, model.Column{Index: i, Key: labels[i]})
		}
	}
	return s
}

// Match returns the index of the first label containing any candidate,
// or -1. Labels must already be lower-cased.
func Match(labels []string, candidates []string) int {
	for i, l := range labels {
		for _, c := range candidates {
			if strings.Contains(l, c) {
				return i
			}
		}
	}
	return -1
}

// ForGrid returns a per-row schema lookup for g. ArrayMode resolves the
// header once; ObjectMode resolves each distinct key set once.
func (r *Resolver) ForGrid(g model.Grid) func(model.Row) model.FieldSchema {
	if g.Mode == model.ArrayMode {
		s := r.Resolve(g.Header)
		return func(model.Row) model.FieldSchema { return s }
	}

	seen := make(map[string]model.FieldSchema)
	return func(row model.Row) model.FieldSchema {
		sig := keySignature(row.Keys)
		if s, ok := seen[sig]; ok {
			return s
		}
		s := r.Resolve(row.Keys)
		seen[sig] = s
		return s
	}
}

// keySignature encodes keys with length prefixes so that no two distinct
// key lists share a signature, whatever bytes the keys contain.
func keySignature(keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
