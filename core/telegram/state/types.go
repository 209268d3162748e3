package state

import (
	"strings"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Group returns the part of the state before the first dot ("upload" for
// "upload.awaiting_name"), or the whole state when there is no dot.
func (s State) Group() string {
	group, _, _ := strings.Cut(string(s), ".")
	return group
}

// Options bound the registry.
type Options struct {
	// Capacity is the maximum number of cached sessions.
	Capacity int
	// IdleTTL evicts sessions untouched for this long. Zero disables expiry.
	IdleTTL time.Duration
}

const (
	DefaultCapacity = 10000
	DefaultIdleTTL  = 24 * time.Hour
)

func (o Options) normalize() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.IdleTTL < 0 {
		o.IdleTTL = DefaultIdleTTL
	}
	return o
}
