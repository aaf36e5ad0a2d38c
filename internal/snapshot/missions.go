package snapshot

import "stormwatch/internal/worldinfo"

// MissionStore is the mission-flavored snapshot store with the two derived
// views the notifier and read API care about.
type MissionStore struct {
	*Store[worldinfo.Mission]
}

// NewMissionStore returns an empty mission store.
func NewMissionStore() *MissionStore {
	return &MissionStore{Store: NewStore[worldinfo.Mission]()}
}

// VbucksBearing returns the missions in the current snapshot carrying a
// premium-currency reward.
func (s *MissionStore) VbucksBearing() []worldinfo.Mission {
	return s.Filter(func(m worldinfo.Mission) bool {
		return m.HasReward(worldinfo.ItemVBucks)
	})
}

// LegendarySurvivorBearing returns the missions in the current snapshot
// carrying a legendary survivor reward.
func (s *MissionStore) LegendarySurvivorBearing() []worldinfo.Mission {
	return s.Filter(func(m worldinfo.Mission) bool {
		return m.HasReward(worldinfo.ItemLegendarySurvivor)
	})
}

// Notable returns the union of the vbucks and legendary-survivor views,
// deduplicated by mission id, preserving snapshot order. This is the view
// the daily digest is built from.
func (s *MissionStore) Notable() []worldinfo.Mission {
	seen := make(map[string]bool)
	out := []worldinfo.Mission{}
	for _, m := range s.Items() {
		if seen[m.ID] {
			continue
		}
		if m.HasReward(worldinfo.ItemVBucks) || m.HasReward(worldinfo.ItemLegendarySurvivor) {
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}
