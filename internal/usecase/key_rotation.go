package usecase

import (
	"fmt"
	"time"
)

// Swedavia rotates subscription keys on a six-month calendar: primary keys
// in April, secondary keys in October.
var (
	primaryKeyRotations = []string{
		"2025-04-09",
		"2026-04-08",
		"2027-04-07",
		"2028-04-12",
		"2029-04-11",
		"2030-04-10",
	}
	secondaryKeyRotations = []string{
		"2025-10-03",
		"2026-10-02",
		"2027-10-01",
		"2028-10-06",
		"2029-10-05",
		"2030-10-03",
	}
)

// rotationWarningDays is how close a rotation must be before warning
const rotationWarningDays = 3

// KeyKind selects which subscription key a rotation query refers to
type KeyKind string

const (
	KeyPrimary   KeyKind = "primary"
	KeySecondary KeyKind = "secondary"
)

// KeyRotationStatus reports the rotation outlook for one key
type KeyRotationStatus struct {
	NextRotation   string `json:"next_rotation,omitempty"`
	DaysUntil      int    `json:"days_until_rotation"`
	WarningActive  bool   `json:"warning_active"`
	WarningMessage string `json:"warning_message,omitempty"`
}

// KeyRotationInfo covers both keys
type KeyRotationInfo struct {
	PrimaryKey   KeyRotationStatus `json:"primary_key"`
	SecondaryKey KeyRotationStatus `json:"secondary_key"`
}

// KeyRotationChecker answers when the configured keys will next rotate
type KeyRotationChecker struct {
	now func() time.Time
}

// NewKeyRotationChecker creates a new checker
func NewKeyRotationChecker() *KeyRotationChecker {
	return &KeyRotationChecker{now: time.Now}
}

// NextRotation returns the next scheduled rotation date for a key, or
// false when the calendar has run out
func (c *KeyRotationChecker) NextRotation(kind KeyKind) (time.Time, bool) {
	rotations := primaryKeyRotations
	if kind == KeySecondary {
		rotations = secondaryKeyRotations
	}

	now := c.now().UTC()
	for _, raw := range rotations {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		if date.After(now) {
			return date, true
		}
	}
	return time.Time{}, false
}

// DaysUntilRotation returns whole days until the next rotation, or false
// when none is scheduled
func (c *KeyRotationChecker) DaysUntilRotation(kind KeyKind) (int, bool) {
	next, ok := c.NextRotation(kind)
	if !ok {
		return 0, false
	}
	return int(next.Sub(c.now().UTC()).Hours() / 24), true
}

// ShouldWarn reports whether the rotation is close enough to warn about
func (c *KeyRotationChecker) ShouldWarn(kind KeyKind) bool {
	days, ok := c.DaysUntilRotation(kind)
	return ok && days >= 0 && days <= rotationWarningDays
}

// WarningMessage builds the operator-facing reminder for an upcoming
// rotation. Empty when no rotation is scheduled.
func (c *KeyRotationChecker) WarningMessage(kind KeyKind) string {
	days, ok := c.DaysUntilRotation(kind)
	if !ok {
		return ""
	}
	next, _ := c.NextRotation(kind)

	switch days {
	case 0:
		return fmt.Sprintf("%s API key rotates TODAY, update it from https://apideveloper.swedavia.se/ to avoid service interruption", kind)
	case 1:
		return fmt.Sprintf("%s API key rotates tomorrow (%s), update it from https://apideveloper.swedavia.se/", kind, next.Format("2006-01-02"))
	default:
		return fmt.Sprintf("%s API key rotates in %d days (%s), prepare a new key at https://apideveloper.swedavia.se/", kind, days, next.Format("2006-01-02"))
	}
}

// Info reports the rotation outlook for both keys
func (c *KeyRotationChecker) Info() KeyRotationInfo {
	return KeyRotationInfo{
		PrimaryKey:   c.status(KeyPrimary),
		SecondaryKey: c.status(KeySecondary),
	}
}

func (c *KeyRotationChecker) status(kind KeyKind) KeyRotationStatus {
	status := KeyRotationStatus{}
	if next, ok := c.NextRotation(kind); ok {
		status.NextRotation = next.Format("2006-01-02")
	}
	if days, ok := c.DaysUntilRotation(kind); ok {
		status.DaysUntil = days
	}
	status.WarningActive = c.ShouldWarn(kind)
	if status.WarningActive {
		status.WarningMessage = c.WarningMessage(kind)
	}
	return status
}
