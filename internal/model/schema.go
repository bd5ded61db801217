package model

// Role is a semantic field the schema resolver locates.
type Role int

const (
	RoleTimestamp Role = iota
	RoleIdentifier
	RoleName
	RoleGroup
	RoleReason

	numRoles
)

// Roles lists every role in resolution order.
var Roles = [numRoles]Role{RoleTimestamp, RoleIdentifier, RoleName, RoleGroup, RoleReason}

func (r Role) String() string {
	switch r {
	case RoleTimestamp:
		return "timestamp"
	case RoleIdentifier:
		return "identifier"
	case RoleName:
		return "name"
	case RoleGroup:
		return "group"
	case RoleReason:
		return "reason"
	default:
		return "unknown"
	}
}

// Column references a resolved field: the position in the label list and
// the label text itself (the key name in ObjectMode).
type Column struct {
	Index int
	Key   string
}

// FieldSchema maps each role to a column. Index -1 means unresolved.
type FieldSchema struct {
	cols [numRoles]Column
}

// NewFieldSchema returns a schema with every role unresolved.
func NewFieldSchema() FieldSchema {
	var s FieldSchema
	for i := range s.cols {
		s.cols[i] = Column{Index: -1}
	}
	return s
}

// Set resolves role to the given column.
func (s *FieldSchema) Set(role Role, col Column) {
	s.cols[role] = col
}

// Lookup returns the column for role and whether it is resolved.
func (s FieldSchema) Lookup(role Role) (Column, bool) {
	c := s.cols[role]
	return c, c.Index >= 0
}

// Resolved reports whether role has a column.
func (s FieldSchema) Resolved(role Role) bool {
	return s.cols[role].Index >= 0
}

// Identifiable reports whether a row can be attributed to someone,
// i.e. at least one of name or identifier is resolved.
func (s FieldSchema) Identifiable() bool {
	return s.Resolved(RoleName) || s.Resolved(RoleIdentifier)
}
