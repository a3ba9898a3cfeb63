package gamification

// Level maps total XP to a level. Bands:
//
//	[0, 1000)      100 XP per level, levels 1-9
//	[1000, 4000)   200 XP per level, levels 10-24
//	[4000, 16500)  500 XP per level, levels 25-49
//	[16500, ...)  1000 XP per level, levels 50+
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	switch {
	case xp < 1000:
		if lvl := xp / 100; lvl > 1 {
			return lvl
		}
		return 1
	case xp < 4000:
		return 10 + (xp-1000)/200
	case xp < 16500:
		return 25 + (xp-4000)/500
	default:
		return 50 + (xp-16500)/1000
	}
}
