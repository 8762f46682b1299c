// Package curve defines the canonical level progression curve.
//
// A single formula maps XP to level and back: level = floor(sqrt(xp) / Scale),
// inverted as xpRequired(L) = (Scale * L)^2. Level-up detection, progress
// display, and the SQL accrual path all derive from the same Scale constant so
// they can never disagree about which level an XP total represents.
package curve

import (
	"fmt"
	"math"
)

// Scale controls how quickly levels accumulate. With Scale 10, level 1
// requires 100 XP, level 2 requires 400 XP, level 10 requires 10000 XP.
const Scale = 10

// LevelFor returns the level for an XP total. Monotonically non-decreasing.
func LevelFor(xp int64) int64 {
	if xp <= 0 {
		return 0
	}

	return int64(math.Sqrt(float64(xp))) / Scale
}

// XPRequiredForLevel returns the minimum XP that places a member at the
// given level. Monotonically increasing, exact inverse of LevelFor.
func XPRequiredForLevel(level int64) int64 {
	if level <= 0 {
		return 0
	}

	n := Scale * level

	return n * n
}

// XPToNext returns how much more XP is needed to reach the next level.
func XPToNext(xp int64) int64 {
	return XPRequiredForLevel(LevelFor(xp)+1) - xp
}

// LevelSQL returns a SQL expression deriving the level from an XP
// expression, mirroring LevelFor. Used by the atomic accrual upsert so the
// stored level is always computed from the post-increment XP value.
func LevelSQL(xpExpr string) string {
	return fmt.Sprintf("FLOOR(SQRT(%s) / %d)::bigint", xpExpr, Scale)
}
