// Package actor identifies who triggered a platform operation.
package actor

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

const System = "system"

// Actor is the acting administrator. A zero Actor is the system itself.
type Actor struct {
	Username string       `json:"username"`
	AdminID  snowflake.ID `json:"admin_id,omitempty"`
}

// Name returns the username recorded in notes and activity entries.
func (a Actor) Name() string {
	if name := strings.TrimSpace(a.Username); name != "" {
		return name
	}
	return System
}

func (a Actor) IsSystem() bool {
	return strings.TrimSpace(a.Username) == ""
}
