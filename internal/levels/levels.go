// Package levels loads hand-made board layouts from disk, falling back to
// generated maps when no layout exists for a player count.
package levels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// TilesFor returns the board tiles for a match of the given size. A layout
// file named <n>.json under dir wins; a missing or broken file falls back to
// the generated map.
func TilesFor(dir string, nPlayers int) ([]hexgame.HexCoord, error) {
	tiles, err := loadLevel(dir, nPlayers)
	if err == nil {
		return tiles, nil
	}
	if !os.IsNotExist(err) {
		log.Warn().Err(err).Int("players", nPlayers).Str("dir", dir).
			Msg("Level file unusable, using generated map")
	}
	return hexgame.GenerateMap(nPlayers)
}

// loadLevel reads a level file: a JSON array of {q, r} coordinates.
func loadLevel(dir string, nPlayers int) ([]hexgame.HexCoord, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.json", nPlayers))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tiles []hexgame.HexCoord
	if err := json.Unmarshal(data, &tiles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(tiles) < nPlayers+1 {
		return nil, fmt.Errorf("%s has %d tiles, too few for %d players", path, len(tiles), nPlayers)
	}

	seen := make(map[hexgame.HexCoord]bool, len(tiles))
	for _, c := range tiles {
		if seen[c] {
			return nil, fmt.Errorf("%s repeats tile (%d,%d)", path, c.Q, c.R)
		}
		seen[c] = true
	}
	return tiles, nil
}
