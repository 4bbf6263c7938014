package core

import (
	"errors"
	"fmt"
)

// ErrUnknownEntry is returned when resolution is requested for a name not
// present in the catalog.
var ErrUnknownEntry = errors.New("unknown entry")

// ErrNoHost is returned when no registered host recognizes a base URL.
var ErrNoHost = errors.New("no host for URL")

// UnknownEntryError wraps ErrUnknownEntry with the requested name. It is
// fatal to the single resolution call only.
type UnknownEntryError struct {
	Name string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("entry %q not found in catalog", e.Name)
}

func (e *UnknownEntryError) Unwrap() error {
	return ErrUnknownEntry
}

// ValidationError describes a release or entry that failed schema
// validation. Validation failures are collected as warnings and never abort
// processing of the remaining catalog.
type ValidationError struct {
	Source string // repository document URL
	Entry  string // package or library name, if known
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	name := e.Entry
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("invalid %q key for %s in repository %s: %s", e.Field, name, e.Source, e.Reason)
}
