package committee

import "github.com/iov-one/custody"

const (
	pathRegister = "committee/register"
	pathRevoke   = "committee/revoke"
)

// RegisterMsg registers a new committee.
type RegisterMsg struct {
	Members []Member `json:"members"`
}

var _ custody.Msg = RegisterMsg{}

// Path returns the routing path for this message.
func (RegisterMsg) Path() string { return pathRegister }

// Validate ensures the members form a canonical committee.
func (m RegisterMsg) Validate() error {
	_, err := ValidateMembers(m.Members)
	return err
}

// RevokeMsg removes a registered committee.
type RevokeMsg struct {
	Members []Member `json:"members"`
}

var _ custody.Msg = RevokeMsg{}

// Path returns the routing path for this message.
func (RevokeMsg) Path() string { return pathRevoke }

// Validate ensures the members form a canonical committee.
func (m RevokeMsg) Validate() error {
	_, err := ValidateMembers(m.Members)
	return err
}
