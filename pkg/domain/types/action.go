package types

import "fmt"

// Action is the verb checked against the access policy matrix
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
)

// AllActions returns all valid actions
func AllActions() []Action {
	return []Action{ActionRead, ActionUpdate}
}

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionRead, ActionUpdate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// ParseAction parses a string into an Action
func ParseAction(s string) (Action, error) {
	action := Action(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid action: %s", s)
	}
	return action, nil
}
