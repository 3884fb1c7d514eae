package rules

import "fmt"

// FileAction is what happens to a path in one cleanup mode
type FileAction uint8

const (
	Delete FileAction = iota
	Keep
)

// String returns the rule-file keyword of the action
func (a FileAction) String() string {
	switch a {
	case Delete:
		return "delete"
	case Keep:
		return "keep"
	default:
		return fmt.Sprintf("FileAction(%d)", uint8(a))
	}
}

// ParseFileAction parses a rule-file action keyword
func ParseFileAction(s string) (FileAction, error) {
	switch s {
	case "delete":
		return Delete, nil
	case "keep":
		return Keep, nil
	default:
		return Keep, fmt.Errorf("%w: unknown action %q (must be keep or delete)", ErrInvalidRule, s)
	}
}

// Mode selects which cleanup pass a traversal performs
type Mode string

const (
	// ModeBase cleans the read-only template image shared by all clients.
	ModeBase Mode = "base"
	// ModeUser cleans a single user's writable overlay.
	ModeUser Mode = "user"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBase, ModeUser:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be base or user)", s)
	}
}

// Actions carries the decision for both cleanup passes. Every resolved rule
// has both halves since the same rule file drives both passes.
type Actions struct {
	Base FileAction
	User FileAction
}

// Select returns the half of the actions that applies to mode
func (a Actions) Select(mode Mode) FileAction {
	if mode == ModeUser {
		return a.User
	}
	return a.Base
}

// String renders the actions the way they are written in a rule file
func (a Actions) String() string {
	return "base:" + a.Base.String() + " user:" + a.User.String()
}

// ActionResult is the outcome of a single path query
type ActionResult struct {
	Actions Actions
	// Descend reports that deeper rules exist below this path, so its action
	// must not be applied to the whole subtree without inspecting it.
	Descend bool
}
