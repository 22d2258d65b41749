package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type BoxStatus string

const (
	BoxAvailable BoxStatus = "available"
	BoxOccupied  BoxStatus = "occupied"
)

func (s BoxStatus) Valid() bool {
	return s == BoxAvailable || s == BoxOccupied
}

// One-shot instruction for the box lock controller
type BoxCommand string

const (
	CommandUnlock BoxCommand = "unlock"
	CommandLock   BoxCommand = "lock"
)

func (c BoxCommand) Valid() bool {
	return c == CommandUnlock || c == CommandLock
}

// Box ids look like BOX_A1: fixed prefix, zone letter, numeric suffix
var boxIDPattern = regexp.MustCompile(`^BOX_[A-Z][0-9]+$`)

func ValidBoxID(id string) bool {
	return boxIDPattern.MatchString(id)
}

// Box is a physical storage box with an embedded lock controller.
// Command and CommandIssuedAt are set and cleared together: a box either has
// a pending command with its issue time, or neither.
// Online is derived at query time from LastPing, it's never stored.
type Box struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Name     string
	Location string
	Status   BoxStatus

	Command         *BoxCommand
	CommandIssuedAt *time.Time
	CommandIssuedBy *uuid.UUID

	LastPing *time.Time
	Online   bool
}

// PendingCommand is what a polling device receives
type PendingCommand struct {
	Command  BoxCommand
	IssuedAt time.Time
	Age      time.Duration
}

// Aggregate counters for the device health endpoint
type BoxStats struct {
	Online  int64
	Offline int64
	Pending int64
}
