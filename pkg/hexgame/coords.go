package hexgame

// HexCoord addresses a tile on the board in axial coordinates.
// The implicit third cube axis is s = -q-r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Distance returns the hex-grid distance between two coordinates.
func (c HexCoord) Distance(other HexCoord) int {
	dq := abs(c.Q - other.Q)
	dr := abs(c.R - other.R)
	ds := abs((c.Q + c.R) - (other.Q + other.R))
	return max(dq, dr, ds)
}

// IsNearby reports whether other is exactly one tile away.
func (c HexCoord) IsNearby(other HexCoord) bool {
	return c.Distance(other) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
