package domain

import "errors"

var (
	// ErrInvalidSlotInterval is returned when a slot interval is malformed
	// (bad time format or start not before end)
	ErrInvalidSlotInterval = errors.New("domain: invalid slot interval")

	// ErrSlotOutsideSalonHours is returned when a slot bound falls outside
	// salon operating hours
	ErrSlotOutsideSalonHours = errors.New("domain: slot outside salon hours")

	// ErrUnknownConflictPolicy is returned for an unrecognised conflict
	// policy name in the configuration
	ErrUnknownConflictPolicy = errors.New("domain: unknown conflict policy")
)
