package domain

// AuthScheme names the credential mechanism that produced a Principal.
type AuthScheme string

// List of authentication schemes
const (
	SchemeSession AuthScheme = "session"
	SchemeToken   AuthScheme = "token"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID     string
	Name   string
	Role   Role
	Scheme AuthScheme
	Driver *DriverProfile
}

// Is reports whether the principal was authenticated by scheme with role.
func (p *Principal) Is(scheme AuthScheme, role Role) bool {
	return p != nil && p.Scheme == scheme && p.Role == role
}

// IsAdmin reports whether the principal is an admin web session.
func (p *Principal) IsAdmin() bool { return p.Is(SchemeSession, RoleAdmin) }
