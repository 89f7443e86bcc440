package model

// PermissionLevel is an account's access level on one lesson, derived from
// the lesson_permissions table.  ReadWrite implies Read; an account with
// no grant row has PermissionNone.
type PermissionLevel int

const (
	PermissionNone PermissionLevel = iota
	PermissionRead
	PermissionReadWrite
)

// Database representation of the two grantable levels.
const (
	PermissionTypeRead      = "r"
	PermissionTypeReadWrite = "rw"
)

// ParsePermissionType maps a lesson_permissions.permission_type value onto
// a level.  Unknown values collapse to PermissionNone rather than failing,
// so a bad row can never grant access.
func ParsePermissionType(s string) PermissionLevel {
	switch s {
	case PermissionTypeRead:
		return PermissionRead
	case PermissionTypeReadWrite:
		return PermissionReadWrite
	}
	return PermissionNone
}

// CanRead reports whether the level allows reading the lesson.
func (p PermissionLevel) CanRead() bool { return p >= PermissionRead }

// CanWrite reports whether the level allows mutating the lesson.
func (p PermissionLevel) CanWrite() bool { return p >= PermissionReadWrite }
