package gamedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)
	require.NotNil(t, tables)

	t.Run("mission type table is ordered and non-empty", func(t *testing.T) {
		require.NotEmpty(t, tables.MissionTypes)
		for _, mt := range tables.MissionTypes {
			assert.NotEmpty(t, mt.Name)
			assert.NotEmpty(t, mt.Patterns, "mission type %q has no patterns", mt.Name)
		}
	})

	t.Run("biome table resolves forest theme", func(t *testing.T) {
		require.NotEmpty(t, tables.Biomes)
		found := false
		for _, b := range tables.Biomes {
			for _, p := range b.Patterns {
				if p == "Theme_Forest" {
					found = true
					assert.Equal(t, "Forest", b.Name)
				}
			}
		}
		assert.True(t, found, "Theme_Forest pattern missing from biome table")
	})

	t.Run("reserved reward ids are mapped", func(t *testing.T) {
		vbucks, ok := tables.Rewards["AccountResource:currency_mtxswap"]
		require.True(t, ok)
		assert.Equal(t, "V-Bucks", vbucks.Name)
		assert.Equal(t, "legendary", vbucks.Rarity)

		survivor, ok := tables.Rewards["Worker:workerbasic_sr_t01"]
		require.True(t, ok)
		assert.Equal(t, "legendary", survivor.Rarity)
	})

	t.Run("modifier entries carry descriptions", func(t *testing.T) {
		require.NotEmpty(t, tables.Modifiers)
		for id, m := range tables.Modifiers {
			assert.NotEmpty(t, m.Name, "modifier %s has no name", id)
			assert.NotEmpty(t, m.Description, "modifier %s has no description", id)
		}
	})
}

func TestLoadIsRepeatable(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.Equal(t, a.MissionTypes, b.MissionTypes)
	assert.Equal(t, a.Rewards, b.Rewards)
}
