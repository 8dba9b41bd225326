package dsl

import "strconv"

// formatLoc renders a point the way the diagram widget stores it: "x y".
func formatLoc(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + " " + strconv.FormatFloat(y, 'f', -1, 64)
}
