package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelBands(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{150, 1},
		{200, 2},
		{999, 9},
		{1000, 10},
		{1199, 10},
		{1200, 11},
		{3999, 24},
		{4000, 25},
		{16499, 49},
		{16500, 50},
		{17499, 50},
		{17500, 51},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Level(c.xp), "xp=%d", c.xp)
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 30000; xp++ {
		lvl := Level(xp)
		if lvl < prev {
			t.Fatalf("level dropped from %d to %d at xp=%d", prev, lvl, xp)
		}
		prev = lvl
	}
}
