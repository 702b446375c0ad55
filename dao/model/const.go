package model

import (
	"fmt"
	"strings"
)

// Values are persisted as their ordinal, so SQL ordering follows the
// declaration order below. On the wire they are the upper-case names.

// Role of a user inside a project
type Role uint8

const (
	_ Role = iota
	RoleOwner
	RoleAdmin
	RoleMember
)

var roleNames = []string{"", "OWNER", "ADMIN", "MEMBER"}

func (r Role) String() string { return enumName(roleNames, uint8(r)) }

func (r Role) MarshalText() ([]byte, error) { return marshalEnum(roleNames, uint8(r), "role") }

func (r *Role) UnmarshalText(text []byte) error {
	v, err := parseEnum(roleNames, string(text), "role")
	*r = Role(v)
	return err
}

func ParseRole(s string) (Role, error) {
	var r Role
	err := r.UnmarshalText([]byte(s))
	return r, err
}

// TaskStatus is the workflow column of a task
type TaskStatus uint8

const (
	_ TaskStatus = iota
	StatusTodo
	StatusInProgress
	StatusInReview
	StatusDone
)

var statusNames = []string{"", "TODO", "IN_PROGRESS", "IN_REVIEW", "DONE"}

func (s TaskStatus) String() string { return enumName(statusNames, uint8(s)) }

func (s TaskStatus) MarshalText() ([]byte, error) {
	return marshalEnum(statusNames, uint8(s), "status")
}

func (s *TaskStatus) UnmarshalText(text []byte) error {
	v, err := parseEnum(statusNames, string(text), "status")
	*s = TaskStatus(v)
	return err
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	var st TaskStatus
	err := st.UnmarshalText([]byte(s))
	return st, err
}

// TaskPriority, higher ordinal is more urgent
type TaskPriority uint8

const (
	_ TaskPriority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = []string{"", "LOW", "MEDIUM", "HIGH", "URGENT"}

func (p TaskPriority) String() string { return enumName(priorityNames, uint8(p)) }

func (p TaskPriority) MarshalText() ([]byte, error) {
	return marshalEnum(priorityNames, uint8(p), "priority")
}

func (p *TaskPriority) UnmarshalText(text []byte) error {
	v, err := parseEnum(priorityNames, string(text), "priority")
	*p = TaskPriority(v)
	return err
}

func ParseTaskPriority(s string) (TaskPriority, error) {
	var p TaskPriority
	err := p.UnmarshalText([]byte(s))
	return p, err
}

const DefaultTagColor = "#6B7280"

func enumName(names []string, v uint8) string {
	if int(v) >= len(names) || v == 0 {
		return fmt.Sprintf("UNKNOWN(%d)", v)
	}
	return names[v]
}

func marshalEnum(names []string, v uint8, kind string) ([]byte, error) {
	if int(v) >= len(names) || v == 0 {
		return nil, fmt.Errorf("invalid %s %d", kind, v)
	}
	return []byte(names[v]), nil
}

// EnumError reports a name that is not one of an enum's values.
type EnumError struct {
	Kind    string
	Value   string
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s %q, must be one of %s", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}

func parseEnum(names []string, s, kind string) (uint8, error) {
	for i := 1; i < len(names); i++ {
		if strings.EqualFold(names[i], s) {
			return uint8(i), nil
		}
	}
	return 0, &EnumError{Kind: kind, Value: s, Allowed: names[1:]}
}
