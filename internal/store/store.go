// Package store persists the bot's lightweight state in SQLite: per-guild
// notification destinations and per-user preferences. Everything else the
// process holds is derivable from upstream and lives in memory.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"stormwatch/internal/notify"
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open initializes the database at the given path, creating the directory
// and tables as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS alert_channels (
		guild_id   TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS user_prefs (
		user_id    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, key)
	);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: initialize schema: %w", err)
	}
	return nil
}

// SetAlertChannel maps a guild to its digest channel, replacing any
// previous mapping.
func (s *Store) SetAlertChannel(guildID, channelID string) error {
	if guildID == "" || channelID == "" {
		return fmt.Errorf("store: guild and channel ids are required")
	}
	_, err := s.db.Exec(`
		INSERT INTO alert_channels (guild_id, channel_id) VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("store: set alert channel: %w", err)
	}
	return nil
}

// RemoveAlertChannel drops a guild's mapping. Removing an absent guild is
// not an error.
func (s *Store) RemoveAlertChannel(guildID string) error {
	_, err := s.db.Exec(`DELETE FROM alert_channels WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("store: remove alert channel: %w", err)
	}
	return nil
}

// AlertChannels returns all configured destinations.
func (s *Store) AlertChannels() ([]notify.Destination, error) {
	rows, err := s.db.Query(`SELECT guild_id, channel_id FROM alert_channels ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list alert channels: %w", err)
	}
	defer rows.Close()

	var dests []notify.Destination
	for rows.Next() {
		var d notify.Destination
		if err := rows.Scan(&d.GuildID, &d.ChannelID); err != nil {
			return nil, fmt.Errorf("store: scan alert channel: %w", err)
		}
		dests = append(dests, d)
	}
	return dests, rows.Err()
}

// SetUserPref stores one preference value for a user.
func (s *Store) SetUserPref(userID, key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO user_prefs (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, userID, key, value)
	if err != nil {
		return fmt.Errorf("store: set user pref: %w", err)
	}
	return nil
}

// UserPref reads one preference value. Missing keys return ok=false, not an
// error.
func (s *Store) UserPref(userID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM user_prefs WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: read user pref: %w", err)
	}
	return value, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
