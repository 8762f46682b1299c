package curve_test

import (
	"testing"

	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		xp    int64
		level int64
	}{
		{name: "zero xp", xp: 0, level: 0},
		{name: "negative xp", xp: -50, level: 0},
		{name: "just below level 1", xp: 99, level: 0},
		{name: "exactly level 1", xp: 100, level: 1},
		{name: "mid level 1", xp: 250, level: 1},
		{name: "exactly level 2", xp: 400, level: 2},
		{name: "exactly level 10", xp: 10000, level: 10},
		{name: "large total", xp: 1000000, level: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.level, curve.LevelFor(tt.xp))
		})
	}
}

func TestXPRequiredForLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), curve.XPRequiredForLevel(0))
	assert.Equal(t, int64(0), curve.XPRequiredForLevel(-3))
	assert.Equal(t, int64(100), curve.XPRequiredForLevel(1))
	assert.Equal(t, int64(400), curve.XPRequiredForLevel(2))
	assert.Equal(t, int64(10000), curve.XPRequiredForLevel(10))
}

// The two directions of the curve must agree: the XP requirement for a
// level must map back to exactly that level, and one XP less must not.
func TestCurveInverseConsistency(t *testing.T) {
	t.Parallel()

	for level := int64(1); level <= 200; level++ {
		required := curve.XPRequiredForLevel(level)

		require.Equal(t, level, curve.LevelFor(required),
			"XP requirement for level %d maps to the wrong level", level)
		require.Equal(t, level-1, curve.LevelFor(required-1),
			"one XP below the level %d threshold should stay at level %d", level, level-1)
	}
}

func TestLevelForMonotonic(t *testing.T) {
	t.Parallel()

	previous := int64(0)

	for xp := int64(0); xp <= 50000; xp += 37 {
		level := curve.LevelFor(xp)
		require.GreaterOrEqual(t, level, previous, "level decreased at xp=%d", xp)
		previous = level
	}
}

func TestXPToNext(t *testing.T) {
	t.Parallel()

	// At 0 XP the next level is 1, costing 100 XP in total.
	assert.Equal(t, int64(100), curve.XPToNext(0))
	assert.Equal(t, int64(1), curve.XPToNext(99))
	// At exactly level 1, the next threshold is 400.
	assert.Equal(t, int64(300), curve.XPToNext(100))
}

func TestLevelSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"FLOOR(SQRT(xp + EXCLUDED.xp) / 10)::bigint",
		curve.LevelSQL("xp + EXCLUDED.xp"))
}
