package model

import "strings"

type choiceKind int

const (
	choiceNone choiceKind = iota
	choiceExisting
	choiceNew
)

// Choice is a selection that either names an existing value or drafts a new
// one. It replaces in-band sentinels such as "__new__" in option lists.
type Choice struct {
	kind choiceKind
	name string
}

// Existing selects a value the backend already knows.
func Existing(name string) Choice {
	return Choice{kind: choiceExisting, name: strings.TrimSpace(name)}
}

// CreateNew drafts a value the backend may create implicitly.
func CreateNew(draft string) Choice {
	return Choice{kind: choiceNew, name: strings.TrimSpace(draft)}
}

// Name returns the selected or drafted value.
func (c Choice) Name() string { return c.name }

// IsNew reports whether the value is a draft.
func (c Choice) IsNew() bool { return c.kind == choiceNew }

// IsSet reports whether a non-blank value was chosen.
func (c Choice) IsSet() bool { return c.kind != choiceNone && c.name != "" }

func (c Choice) String() string {
	switch c.kind {
	case choiceExisting:
		return c.name
	case choiceNew:
		return c.name + " (new)"
	}
	return ""
}
