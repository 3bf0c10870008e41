// Package tokens generates the opaque URL-safe strings used for calendar
// feeds and event invite links.
package tokens

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	calendarTokenLen = 43
	inviteTokenLen   = 22

	invitePrefix = "/invite/"
)

// Nanoid draws tokens from the default nanoid alphabet (A-Za-z0-9_-).
type Nanoid struct{}

func (Nanoid) CalendarToken() (string, error) {
	return gonanoid.New(calendarTokenLen)
}

func (Nanoid) InviteToken() (string, error) {
	return gonanoid.New(inviteTokenLen)
}

// InvitePath is the public path stored on an event for its invite token.
func InvitePath(token string) string {
	return invitePrefix + token
}

// TokenFromPath extracts the token from an invite path. It returns "" when
// path is not an invite path.
func TokenFromPath(path string) string {
	token, ok := strings.CutPrefix(path, invitePrefix)
	if !ok {
		return ""
	}
	return token
}
