package models

// PrincipalKind distinguishes student callers from admin callers
type PrincipalKind string

const (
	PrincipalStudent PrincipalKind = "student"
	PrincipalAdmin   PrincipalKind = "admin"
)

// Principal is an already-authenticated caller. It is produced by the auth layer
// and passed explicitly to every workflow operation.
type Principal struct {
	ID   uint          `json:"id"`
	Kind PrincipalKind `json:"kind"`
	Role AdminRole     `json:"role,omitempty"` // empty for students
}

// IsStudent reports whether the principal is a student
func (p Principal) IsStudent() bool {
	return p.Kind == PrincipalStudent
}

// IsAdmin reports whether the principal is an admin of any role
func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalAdmin
}

// IsCoordinator reports whether the principal is an admin with the coordinator role
func (p Principal) IsCoordinator() bool {
	return p.IsAdmin() && p.Role == AdminRoleCoordinator
}

// IsSuperior reports whether the principal is Root or Professor. Those roles are
// not scoped to a single project.
func (p Principal) IsSuperior() bool {
	return p.IsAdmin() && (p.Role == AdminRoleRoot || p.Role == AdminRoleProfessor)
}
