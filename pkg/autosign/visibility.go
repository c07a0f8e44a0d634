package autosign

import "strings"

// Signer is the identity a signing session acts as.
type Signer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Matches reports whether a field assigned to assignee may be seen by s.
// Unassigned fields match every signer; otherwise the assignee must equal the
// signer's email or role, ignoring case.
func (s Signer) Matches(assignee *string) bool {
	a := NormalizeAssignee(assignee)
	if a == nil {
		return true
	}

	if email := strings.TrimSpace(s.Email); email != "" && strings.EqualFold(*a, email) {
		return true
	}
	if role := strings.TrimSpace(s.Role); role != "" && strings.EqualFold(*a, role) {
		return true
	}

	return false
}

func IsVisible(f Field, s Signer) bool {
	return s.Matches(f.AssignedTo)
}

// VisibleTo filters fields down to the ones s may read and fill, preserving order.
func VisibleTo(fields []Field, s Signer) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if IsVisible(f, s) {
			out = append(out, f)
		}
	}
	return out
}
