// Package gamedata holds the static reference tables used to classify raw
// world-state data: mission type patterns, biome patterns, and reward/modifier
// display names. The tables are baked into the binary with go:embed, loaded
// once at startup, and never mutated afterwards.
package gamedata

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data
var dataFS embed.FS

// MissionTypePattern maps generator-id substrings to a display name.
// Table order is significant: classification takes the first pattern whose
// substring occurs in the generator string.
type MissionTypePattern struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

// BiomePattern maps zone-theme substrings to a biome display name.
// Ordered, first match wins.
type BiomePattern struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

// RewardInfo is the display metadata for a reward template id.
type RewardInfo struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
}

// ModifierInfo is the display metadata for a mission alert modifier id.
type ModifierInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Tables is the full set of reference tables. Read-only after Load.
type Tables struct {
	MissionTypes []MissionTypePattern
	Biomes       []BiomePattern
	Rewards      map[string]RewardInfo
	Modifiers    map[string]ModifierInfo
}

// Load parses the embedded reference data. Called once at process start.
func Load() (*Tables, error) {
	t := &Tables{}

	if err := loadJSON("data/mission_types.json", &t.MissionTypes); err != nil {
		return nil, err
	}
	if err := loadJSON("data/biomes.json", &t.Biomes); err != nil {
		return nil, err
	}
	if err := loadJSON("data/rewards.json", &t.Rewards); err != nil {
		return nil, err
	}
	if err := loadJSON("data/modifiers.json", &t.Modifiers); err != nil {
		return nil, err
	}

	if len(t.MissionTypes) == 0 {
		return nil, fmt.Errorf("gamedata: mission type table is empty")
	}
	if len(t.Biomes) == 0 {
		return nil, fmt.Errorf("gamedata: biome table is empty")
	}

	return t, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gamedata: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("gamedata: parse %s: %w", path, err)
	}
	return nil
}
