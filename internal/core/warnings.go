package core

import (
	"fmt"
	"sync"
)

// Warning records a non-fatal problem encountered while building or
// resolving a catalog: a malformed release, an unreachable repository, an
// include cycle. Warnings are collected, never thrown, so the caller can
// report them in aggregate.
type Warning struct {
	// Source is the repository or document URL the problem surfaced in.
	Source string
	// Entry is the affected package or library name, if any.
	Entry string
	// Message describes the problem.
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Source != "" && w.Entry != "":
		return fmt.Sprintf("%s [%s]: %s", w.Source, w.Entry, w.Message)
	case w.Source != "":
		return fmt.Sprintf("%s: %s", w.Source, w.Message)
	case w.Entry != "":
		return fmt.Sprintf("[%s]: %s", w.Entry, w.Message)
	}
	return w.Message
}

// Warnings is a concurrency-safe warning collector shared by the normalizer
// and resolution sessions.
type Warnings struct {
	mu   sync.Mutex
	list []Warning
}

// Add records a warning.
func (ws *Warnings) Add(source, entry, format string, args ...any) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.list = append(ws.list, Warning{
		Source:  source,
		Entry:   entry,
		Message: fmt.Sprintf(format, args...),
	})
}

// AddError records an error as a warning.
func (ws *Warnings) AddError(source, entry string, err error) {
	ws.Add(source, entry, "%s", err.Error())
}

// All returns a copy of the collected warnings in record order.
func (ws *Warnings) All() []Warning {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]Warning, len(ws.list))
	copy(out, ws.list)
	return out
}

// Len returns the number of collected warnings.
func (ws *Warnings) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.list)
}
