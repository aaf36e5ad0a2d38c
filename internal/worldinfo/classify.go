package worldinfo

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"stormwatch/internal/gamedata"
)

// powerLevels maps a reward-tier digit to its power level. The digit from
// the tier-group name indexes this table directly, clamped into range, so
// T5 is power 19 and the highest tier is power 160.
var powerLevels = [...]int{
	1, 3, 5, 9, 15, 19, 23, 28, 34, 40, 46, 52, 58, 64, 70, 76,
	82, 88, 94, 100, 108, 116, 124, 132, 140, 160,
}

const unknownBiome = "Unknown Biome"

// tierPatterns resolve a tier-group name into a tier digit and group flag.
// Ordered, first match wins; order must not change or existing tier-group
// names would silently reclassify.
type tierPattern struct {
	re       *regexp.Regexp
	group    bool
	tutorial bool
}

var tierPatterns = []tierPattern{
	{re: regexp.MustCompile(`^Mission_Select_Tutorial`), tutorial: true},
	{re: regexp.MustCompile(`^Mission_Select_T(\d+)$`)},
	{re: regexp.MustCompile(`^Group_Mission_Select_T(\d+)$`), group: true},
	{re: regexp.MustCompile(`^Phoenix_Mission_Select_T(\d+)$`)},
	{re: regexp.MustCompile(`^Phoenix_Group_Mission_Select_T(\d+)$`), group: true},
	{re: regexp.MustCompile(`^StormShield_Select_T(\d+)$`)},
}

type tileKey struct {
	theaterID string
	tileIndex int
}

type tileInfo struct {
	area      string
	hidden    bool
	zoneTheme string
}

// Classify flattens a raw world document into typed missions. It is a pure
// function of the document and the static tables; calling it twice on the
// same input yields element-wise identical output.
//
// Entries whose tile index has no matching tile are skipped, as are missions
// with an unknown type or a hidden/test theater. Every other lookup miss
// degrades to a placeholder value; a malformed entry never aborts the batch.
func Classify(doc *Document, tables *gamedata.Tables, log *zap.Logger) []Mission {
	if log == nil {
		log = zap.NewNop()
	}

	tiles := indexTiles(doc)
	alerts := indexAlerts(doc)

	out := make([]Mission, 0, 64)
	for _, group := range doc.Missions {
		for _, am := range group.AvailableMissions {
			tile, ok := tiles[tileKey{group.TheaterID, am.TileIndex}]
			if !ok {
				// Malformed upstream entry; drop it, keep the batch.
				continue
			}

			missionType, show := resolveMissionType(am.Generator, tables)
			power, isGroup := resolveTier(am.MissionRewards.TierGroupName)

			m := Mission{
				ID:             am.Guid,
				Show:           show,
				MissionType:    missionType,
				Area:           tile.area,
				Biome:          resolveBiome(tile.zoneTheme, tables),
				PowerLevel:     power,
				IsGroupMission: isGroup,
				Modifiers:      []Modifier{},
				Rewards:        make([]Reward, 0, len(am.MissionRewards.Items)),
			}

			for _, item := range am.MissionRewards.Items {
				m.Rewards = append(m.Rewards, resolveReward(item, true, tables, log))
			}

			if alert, ok := alerts[tileKey{group.TheaterID, am.TileIndex}]; ok {
				m.ID = alert.Guid
				for _, item := range alert.Rewards.Items {
					m.Rewards = append(m.Rewards, resolveReward(item, false, tables, log))
				}
				for _, item := range alert.Modifiers.Items {
					m.Modifiers = append(m.Modifiers, resolveModifier(item, tables, log))
				}
			}

			if !m.Show || tile.hidden {
				continue
			}
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PowerLevel < out[j].PowerLevel
	})
	return out
}

func indexTiles(doc *Document) map[tileKey]tileInfo {
	tiles := make(map[tileKey]tileInfo)
	for _, th := range doc.Theaters {
		for i, tile := range th.Tiles {
			tiles[tileKey{th.UniqueID, i}] = tileInfo{
				area:      th.DisplayName.En,
				hidden:    th.Hidden,
				zoneTheme: tile.ZoneTheme,
			}
		}
	}
	return tiles
}

func indexAlerts(doc *Document) map[tileKey]MissionAlert {
	alerts := make(map[tileKey]MissionAlert)
	for _, group := range doc.MissionAlerts {
		for _, alert := range group.AvailableMissionAlerts {
			alerts[tileKey{group.TheaterID, alert.TileIndex}] = alert
		}
	}
	return alerts
}

func resolveMissionType(generator string, tables *gamedata.Tables) (string, bool) {
	for _, mt := range tables.MissionTypes {
		for _, pattern := range mt.Patterns {
			if strings.Contains(generator, pattern) {
				return mt.Name, true
			}
		}
	}
	return "Unknown", false
}

func resolveBiome(zoneTheme string, tables *gamedata.Tables) string {
	for _, b := range tables.Biomes {
		for _, pattern := range b.Patterns {
			if strings.Contains(zoneTheme, pattern) {
				return b.Name
			}
		}
	}
	return unknownBiome
}

// resolveTier extracts the tier digit from a reward tier-group name and maps
// it through the power level table. Tutorial names and names matching no
// pattern both land on power level 1.
func resolveTier(tierGroupName string) (power int, group bool) {
	for _, tp := range tierPatterns {
		match := tp.re.FindStringSubmatch(tierGroupName)
		if match == nil {
			continue
		}
		if tp.tutorial {
			return powerLevels[0], false
		}
		tier, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if tier < 0 {
			tier = 0
		}
		if tier >= len(powerLevels) {
			tier = len(powerLevels) - 1
		}
		return powerLevels[tier], tp.group
	}
	return powerLevels[0], false
}

// templateName returns the part of a reward template id after the colon,
// used as the display-name fallback for unmapped ids.
func templateName(itemType string) string {
	if _, after, ok := strings.Cut(itemType, ":"); ok && after != "" {
		return after
	}
	return itemType
}

func resolveReward(item RewardItem, repeatable bool, tables *gamedata.Tables, log *zap.Logger) Reward {
	r := Reward{
		ID:         item.ItemType,
		Amount:     item.Quantity,
		Repeatable: repeatable,
	}
	if info, ok := tables.Rewards[item.ItemType]; ok {
		r.Name = info.Name
		r.Rarity = info.Rarity
	} else {
		log.Warn("unmapped reward id", zap.String("itemType", item.ItemType))
		r.Name = templateName(item.ItemType)
		r.Rarity = "common"
	}
	return r
}

func resolveModifier(item RewardItem, tables *gamedata.Tables, log *zap.Logger) Modifier {
	m := Modifier{ID: item.ItemType}
	if info, ok := tables.Modifiers[item.ItemType]; ok {
		m.Name = info.Name
		m.Description = info.Description
		m.Icon = info.Icon
	} else {
		log.Warn("unmapped modifier id", zap.String("itemType", item.ItemType))
		m.Name = templateName(item.ItemType)
	}
	return m
}
