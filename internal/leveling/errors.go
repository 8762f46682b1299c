// Package leveling implements the XP accrual and role progression engine:
// cooldown gating, XP grants, level derivation, reward role resolution,
// leaderboard ranking, and administrative progression changes.
package leveling

import "errors"

var (
	// ErrPermissionDenied is returned when a caller lacks the guild's
	// administrative capability for an admin operation.
	ErrPermissionDenied = errors.New("caller lacks administrative permission")

	// ErrInvalidArgument is returned before any mutation when an admin
	// operation receives a negative or missing amount.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable wraps persistence failures surfaced to
	// administrative callers.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
