package hexgame

import (
	"fmt"
	"math"
	"sort"
)

// MinPlayers and MaxPlayers bound the supported match sizes.
const (
	MinPlayers = 3
	MaxPlayers = 8
)

const defaultMapSize = 8

// GenerateMap returns the tile set for the given player count: a triangle
// for 3, a square for 4, a pointy-top hexagon for 5-6 and a flat-top
// hexagon for 7-8 players.
func GenerateMap(nPlayers int) ([]HexCoord, error) {
	switch {
	case nPlayers == 3:
		return generateTriangle(defaultMapSize), nil
	case nPlayers == 4:
		return generateSquare(defaultMapSize), nil
	case nPlayers == 5 || nPlayers == 6:
		return generatePointyHexagon(defaultMapSize), nil
	case nPlayers == 7 || nPlayers == 8:
		return generateFlatTopHexagon(defaultMapSize), nil
	default:
		return nil, fmt.Errorf("number of players not supported: %d", nPlayers)
	}
}

func generatePointyHexagon(radius int) []HexCoord {
	var tiles []HexCoord
	for q := -radius; q <= radius; q++ {
		rMin := max(-radius, -q-radius)
		rMax := min(radius, -q+radius)
		for r := rMin; r <= rMax; r++ {
			tiles = append(tiles, HexCoord{Q: q, R: r})
		}
	}
	return tiles
}

func generateFlatTopHexagon(radius int) []HexCoord {
	var tiles []HexCoord
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			if max(abs(q), abs(r), abs(-q-r)) <= radius {
				tiles = append(tiles, HexCoord{Q: q, R: r})
			}
		}
	}
	return tiles
}

func generateTriangle(size int) []HexCoord {
	var tiles []HexCoord
	for q := 0; q < size; q++ {
		for r := 0; r < size-q; r++ {
			tiles = append(tiles, HexCoord{Q: q, R: r})
		}
	}
	return tiles
}

func generateSquare(size int) []HexCoord {
	var tiles []HexCoord
	offset := size / 2
	for r := -offset; r <= offset; r++ {
		rOffset := floorDiv(r, 2)
		for q := -offset - rOffset; q < size-offset-rOffset; q++ {
			tiles = append(tiles, HexCoord{Q: q, R: r})
		}
	}
	return tiles
}

// floorDiv divides rounding toward negative infinity, matching the tile
// stagger of the square map for negative rows.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// homeBaseCoords picks one boundary tile per player, evenly spaced by angle
// around the map centroid. Deterministic for a given tile set.
func homeBaseCoords(tiles []HexCoord, nPlayers int) []HexCoord {
	present := make(map[HexCoord]bool, len(tiles))
	for _, c := range tiles {
		present[c] = true
	}

	var boundary []HexCoord
	for _, c := range tiles {
		neighbors := 0
		for _, d := range neighborOffsets {
			if present[HexCoord{Q: c.Q + d.Q, R: c.R + d.R}] {
				neighbors++
			}
		}
		if neighbors < 6 {
			boundary = append(boundary, c)
		}
	}

	cx, cy := centroid(tiles)
	sort.Slice(boundary, func(i, j int) bool {
		ai := angleAround(boundary[i], cx, cy)
		aj := angleAround(boundary[j], cx, cy)
		if ai != aj {
			return ai < aj
		}
		if boundary[i].Q != boundary[j].Q {
			return boundary[i].Q < boundary[j].Q
		}
		return boundary[i].R < boundary[j].R
	})

	bases := make([]HexCoord, 0, nPlayers)
	for i := 0; i < nPlayers; i++ {
		bases = append(bases, boundary[i*len(boundary)/nPlayers])
	}
	return bases
}

var neighborOffsets = [6]HexCoord{
	{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
	{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
}

// pixel projects axial coordinates onto the plane (pointy-top layout).
func pixel(c HexCoord) (float64, float64) {
	x := float64(c.Q) + float64(c.R)/2
	y := float64(c.R) * math.Sqrt(3) / 2
	return x, y
}

func centroid(tiles []HexCoord) (float64, float64) {
	var sx, sy float64
	for _, c := range tiles {
		x, y := pixel(c)
		sx += x
		sy += y
	}
	n := float64(len(tiles))
	return sx / n, sy / n
}

func angleAround(c HexCoord, cx, cy float64) float64 {
	x, y := pixel(c)
	return math.Atan2(y-cy, x-cx)
}

// coreCoord chooses the core tile: the origin when it is on the map and not
// a home base, otherwise the free tile closest to the centroid.
func coreCoord(tiles []HexCoord, bases []HexCoord) HexCoord {
	isBase := make(map[HexCoord]bool, len(bases))
	for _, b := range bases {
		isBase[b] = true
	}

	origin := HexCoord{}
	for _, c := range tiles {
		if c == origin && !isBase[origin] {
			return origin
		}
	}

	cx, cy := centroid(tiles)
	best := tiles[0]
	bestDist := math.Inf(1)
	for _, c := range tiles {
		if isBase[c] {
			continue
		}
		x, y := pixel(c)
		d := (x-cx)*(x-cx) + (y-cy)*(y-cy)
		if d < bestDist || (d == bestDist && less(c, best)) {
			best, bestDist = c, d
		}
	}
	return best
}

func less(a, b HexCoord) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}
