package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stormwatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAlertChannels(t *testing.T) {
	s := openTestStore(t)

	t.Run("empty store has no destinations", func(t *testing.T) {
		dests, err := s.AlertChannels()
		require.NoError(t, err)
		assert.Empty(t, dests)
	})

	t.Run("set and list", func(t *testing.T) {
		require.NoError(t, s.SetAlertChannel("guild-1", "chan-1"))
		require.NoError(t, s.SetAlertChannel("guild-2", "chan-2"))

		dests, err := s.AlertChannels()
		require.NoError(t, err)
		require.Len(t, dests, 2)
		assert.Equal(t, "guild-1", dests[0].GuildID)
		assert.Equal(t, "chan-1", dests[0].ChannelID)
	})

	t.Run("set replaces an existing mapping", func(t *testing.T) {
		require.NoError(t, s.SetAlertChannel("guild-1", "chan-1b"))
		dests, err := s.AlertChannels()
		require.NoError(t, err)
		require.Len(t, dests, 2)
		assert.Equal(t, "chan-1b", dests[0].ChannelID)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.RemoveAlertChannel("guild-1"))
		dests, err := s.AlertChannels()
		require.NoError(t, err)
		require.Len(t, dests, 1)
		assert.Equal(t, "guild-2", dests[0].GuildID)
	})

	t.Run("removing an absent guild is not an error", func(t *testing.T) {
		assert.NoError(t, s.RemoveAlertChannel("never-existed"))
	})

	t.Run("blank ids rejected", func(t *testing.T) {
		assert.Error(t, s.SetAlertChannel("", "c"))
		assert.Error(t, s.SetAlertChannel("g", ""))
	})
}

func TestUserPrefs(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.UserPref("u1", "platform")
	require.NoError(t, err)
	assert.False(t, ok, "missing pref is ok=false, not an error")

	require.NoError(t, s.SetUserPref("u1", "platform", "pc"))
	v, ok, err := s.UserPref("u1", "platform")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pc", v)

	require.NoError(t, s.SetUserPref("u1", "platform", "psn"))
	v, _, err = s.UserPref("u1", "platform")
	require.NoError(t, err)
	assert.Equal(t, "psn", v, "set overwrites")
}
