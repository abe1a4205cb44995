package models

// StaffRole decides which endpoints a staff member may call.
type StaffRole string

const (
	StaffRoleAdmin       StaffRole = "admin"
	StaffRoleCoordinator StaffRole = "coordinator"
	StaffRoleGate        StaffRole = "gate"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleCoordinator, StaffRoleGate:
		return true
	}
	return false
}

// Staff is a convention crew member.
type Staff struct {
	BaseModel
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         StaffRole `json:"role"`
	Gate         string    `json:"gate,omitempty"`
	PasscodeHash string    `json:"-"`
	Active       bool      `json:"active"`
}

// StaffRecord is the persisted form of Staff; unlike the API form it keeps
// the passcode hash.
type StaffRecord struct {
	Staff
	PasscodeHash string `json:"passcode_hash"`
}
