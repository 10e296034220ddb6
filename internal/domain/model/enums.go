package model

// Role is the role tag of a signed-in user. Values outside the known set are
// carried through unchanged.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleMaster  Role = "master"
)

// Known reports whether r is one of the roles the portal has pages for.
func (r Role) Known() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleMaster:
		return true
	}
	return false
}

// RedirectReason is the internal reason code behind a redirect. It is logged
// and exposed to tests, never to the user.
type RedirectReason string

const (
	ReasonUnauthenticated         RedirectReason = "unauthenticated"
	ReasonRoleDenied              RedirectReason = "role-denied"
	ReasonInvalidToken            RedirectReason = "invalid-token"
	ReasonVerificationUnavailable RedirectReason = "verification-unavailable"
	ReasonLoggedOut               RedirectReason = "logged-out"
)

// LoginPath is the login view. Every redirect points here.
const LoginPath = "/login"
