// Package user names the person acting from this machine. The name is
// recorded as CompletedBy when a checklist item is ticked.
package user

import (
	"os"
	"os/user"
	"strings"
)

// CurrentActor returns the acting user's name. PROPBOARD_ACTOR wins, then
// the OS account, then $USER, and finally "unknown".
func CurrentActor() string {
	if actor := strings.TrimSpace(os.Getenv("PROPBOARD_ACTOR")); actor != "" {
		return actor
	}
	if currentUser, err := user.Current(); err == nil && currentUser.Username != "" {
		return currentUser.Username
	}
	if username := os.Getenv("USER"); username != "" {
		return username
	}
	return "unknown"
}
