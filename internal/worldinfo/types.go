// Package worldinfo models the upstream world-state document and classifies
// it into flat, typed mission records. The raw document is deeply nested and
// only loosely schema'd upstream; Parse converts it into known shapes before
// any pattern matching runs, so the classifier never does speculative
// property access.
package worldinfo

import (
	"encoding/json"
	"fmt"
)

// Reserved reward template ids with special meaning to downstream views.
const (
	ItemVBucks            = "AccountResource:currency_mtxswap"
	ItemLegendarySurvivor = "Worker:workerbasic_sr_t01"
)

// Document is the typed form of the raw world-state blob. Tile indices are
// only meaningful within their owning theater.
type Document struct {
	Theaters      []Theater         `json:"theaters"`
	Missions      []TheaterMissions `json:"missions"`
	MissionAlerts []TheaterAlerts   `json:"missionAlerts"`
}

// Theater is a zone/world-region container holding indexed tiles.
type Theater struct {
	UniqueID    string        `json:"uniqueId"`
	DisplayName LocalizedText `json:"displayName"`
	Hidden      bool          `json:"bHideLikeTestComponent"`
	Tiles       []Tile        `json:"tiles"`
}

// LocalizedText carries the localized display strings; only English is used.
type LocalizedText struct {
	En string `json:"en"`
}

// Tile is a slot within a theater, addressed by its index in the tiles array.
type Tile struct {
	ZoneTheme string `json:"zoneTheme"`
}

// TheaterMissions is the per-theater group of available base missions.
type TheaterMissions struct {
	TheaterID         string             `json:"theaterId"`
	AvailableMissions []AvailableMission `json:"availableMissions"`
}

// AvailableMission is one base mission slot referencing a tile by index.
type AvailableMission struct {
	Guid           string       `json:"missionGuid"`
	Generator      string       `json:"missionGenerator"`
	TileIndex      int          `json:"tileIndex"`
	MissionRewards RewardBundle `json:"missionRewards"`
}

// RewardBundle holds a reward-tier identifier plus granted items. Alerts
// reuse the same shape for their modifier and bonus reward lists.
type RewardBundle struct {
	TierGroupName string       `json:"tierGroupName"`
	Items         []RewardItem `json:"items"`
}

// RewardItem is a single granted item reference.
type RewardItem struct {
	ItemType string `json:"itemType"`
	Quantity int    `json:"quantity"`
}

// TheaterAlerts is the per-theater group of active mission alerts.
type TheaterAlerts struct {
	TheaterID              string         `json:"theaterId"`
	AvailableMissionAlerts []MissionAlert `json:"availableMissionAlerts"`
}

// MissionAlert is a time-limited bonus overlay keyed to a tile index.
type MissionAlert struct {
	Guid      string       `json:"missionAlertGuid"`
	TileIndex int          `json:"tileIndex"`
	Modifiers RewardBundle `json:"missionAlertModifiers"`
	Rewards   RewardBundle `json:"missionAlertRewards"`
}

// Parse decodes a raw world-state body and validates the structural
// assumptions classification depends on. A document with no theaters is
// treated as malformed (the fetcher retries on it); empty mission and alert
// groups are fine.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("worldinfo: decode: %w", err)
	}
	if len(doc.Theaters) == 0 {
		return nil, fmt.Errorf("worldinfo: document has no theaters")
	}
	return &doc, nil
}

// Mission is one classified, displayable mission. Immutable once produced.
type Mission struct {
	ID             string     `json:"id"`
	Show           bool       `json:"show"`
	MissionType    string     `json:"missionType"`
	Area           string     `json:"area"`
	Biome          string     `json:"biome"`
	PowerLevel     int        `json:"powerLevel"`
	IsGroupMission bool       `json:"isGroupMission"`
	Modifiers      []Modifier `json:"modifiers"`
	Rewards        []Reward   `json:"rewards"`
}

// Modifier is a resolved mission alert modifier.
type Modifier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Reward is a resolved mission reward. Base mission rewards are repeatable;
// alert-only bonus rewards are not.
type Reward struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rarity     string `json:"rarity"`
	Amount     int    `json:"amount"`
	Repeatable bool   `json:"repeatable"`
}

// HasReward reports whether the mission grants the given reward template id.
func (m Mission) HasReward(id string) bool {
	for _, r := range m.Rewards {
		if r.ID == id {
			return true
		}
	}
	return false
}
