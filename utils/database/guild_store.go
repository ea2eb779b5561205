package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mod-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// GuildStore is the moderation database for a single guild: one SQLite
// file holding profiles, temporary punishments and role permissions.
// A store handle must never be shared with a second Open of the same
// file; the request actor owns exactly one handle per guild.
type GuildStore struct {
	db      *sqlx.DB
	GuildID string
	Path    string
}

const guildSchema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id     TEXT NOT NULL PRIMARY KEY,
    thread_id   TEXT NOT NULL DEFAULT '',
    punishments TEXT NOT NULL DEFAULT '{}',
    recency     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_recency ON profiles (recency ASC);

CREATE TABLE IF NOT EXISTS temporaries (
    user_id    TEXT NOT NULL PRIMARY KEY,
    punishment TEXT NOT NULL,
    recency    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_temporaries_recency ON temporaries (recency ASC);

CREATE TABLE IF NOT EXISTS role_permissions (
    role_id TEXT NOT NULL PRIMARY KEY,
    allow   INTEGER NOT NULL DEFAULT 0
);`

// OpenGuildStore opens (creating if needed) the database file for one guild
// and ensures the schema and recency indexes exist.
func OpenGuildStore(dataDir, guildID string) (*GuildStore, error) {
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create guild database folder: %w", err)
	}
	path := filepath.Join(dataDir, guildID+".db")
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to guild database %s: %w", path, err)
	}
	if _, err := db.Exec(guildSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create guild tables for %s: %w", guildID, err)
	}
	return &GuildStore{db: db, GuildID: guildID, Path: path}, nil
}

// Close releases the underlying database handle.
func (g *GuildStore) Close() error {
	return g.db.Close()
}

type profileRow struct {
	UserID      string `db:"user_id"`
	ThreadID    string `db:"thread_id"`
	Punishments string `db:"punishments"`
	Recency     int64  `db:"recency"`
}

func (row profileRow) toProfile() (*model.Profile, error) {
	punishments := make(map[int64]model.PunishmentRecord)
	if err := json.Unmarshal([]byte(row.Punishments), &punishments); err != nil {
		return nil, fmt.Errorf("failed to decode punishments for user %s: %w", row.UserID, err)
	}
	return &model.Profile{
		UserID:      row.UserID,
		ThreadID:    row.ThreadID,
		Punishments: punishments,
		Recency:     row.Recency,
	}, nil
}

// FindProfile looks up one user's profile. A missing profile is not an
// error: it returns (nil, nil), meaning "no history".
func (g *GuildStore) FindProfile(userID string) (*model.Profile, error) {
	var row profileRow
	err := g.db.Get(&row, "SELECT * FROM profiles WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return row.toProfile()
}

// UpsertProfile writes the profile row, replacing any previous version.
func (g *GuildStore) UpsertProfile(p *model.Profile) error {
	punishments, err := json.Marshal(p.Punishments)
	if err != nil {
		return fmt.Errorf("failed to encode punishments for user %s: %w", p.UserID, err)
	}
	_, err = g.db.NamedExec(
		`INSERT OR REPLACE INTO profiles (user_id, thread_id, punishments, recency)
		 VALUES (:user_id, :thread_id, :punishments, :recency)`,
		profileRow{
			UserID:      p.UserID,
			ThreadID:    p.ThreadID,
			Punishments: string(punishments),
			Recency:     p.Recency,
		})
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", p.UserID, err)
	}
	return nil
}

// RecentProfiles returns up to limit profiles, most recently touched first.
// The recency column stores the complement of the mutation time, so the
// ascending index gives the newest rows first.
func (g *GuildStore) RecentProfiles(limit int) ([]*model.Profile, error) {
	var rows []profileRow
	err := g.db.Select(&rows, "SELECT * FROM profiles ORDER BY recency ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent profiles: %w", err)
	}
	profiles := make([]*model.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := row.toProfile()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// FindRolePermission returns the permission row for a role, creating and
// persisting a default-deny entry on first lookup.
func (g *GuildStore) FindRolePermission(roleID string) (model.RolePermission, error) {
	var perm model.RolePermission
	err := g.db.Get(&perm, "SELECT * FROM role_permissions WHERE role_id = ?", roleID)
	if errors.Is(err, sql.ErrNoRows) {
		perm = model.RolePermission{RoleID: roleID, Allow: false}
		if _, err := g.db.NamedExec(
			"INSERT INTO role_permissions (role_id, allow) VALUES (:role_id, :allow)", perm); err != nil {
			return perm, fmt.Errorf("failed to create default role permission for %s: %w", roleID, err)
		}
		return perm, nil
	}
	if err != nil {
		return perm, fmt.Errorf("failed to get role permission for %s: %w", roleID, err)
	}
	return perm, nil
}

// UpsertRolePermission sets the allow flag for a role.
func (g *GuildStore) UpsertRolePermission(perm model.RolePermission) error {
	_, err := g.db.NamedExec(
		"INSERT OR REPLACE INTO role_permissions (role_id, allow) VALUES (:role_id, :allow)", perm)
	if err != nil {
		return fmt.Errorf("failed to upsert role permission for %s: %w", perm.RoleID, err)
	}
	return nil
}

type temporaryRow struct {
	UserID     string `db:"user_id"`
	Punishment string `db:"punishment"`
	Recency    int64  `db:"recency"`
}

// InsertTemporary persists the mirror row for an active finite punishment.
// One row per user: arming a new timer replaces the previous mirror.
func (g *GuildStore) InsertTemporary(temp model.Temporary) error {
	record, err := json.Marshal(temp.Record)
	if err != nil {
		return fmt.Errorf("failed to encode temporary for user %s: %w", temp.UserID, err)
	}
	_, err = g.db.NamedExec(
		`INSERT OR REPLACE INTO temporaries (user_id, punishment, recency)
		 VALUES (:user_id, :punishment, :recency)`,
		temporaryRow{UserID: temp.UserID, Punishment: string(record), Recency: temp.Recency})
	if err != nil {
		return fmt.Errorf("failed to insert temporary for user %s: %w", temp.UserID, err)
	}
	return nil
}

// DeleteTemporary removes the mirror row for a user, if present.
func (g *GuildStore) DeleteTemporary(userID string) error {
	if _, err := g.db.Exec("DELETE FROM temporaries WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete temporary for user %s: %w", userID, err)
	}
	return nil
}

// ListTemporaries returns every persisted mirror row. Used on startup to
// re-arm expiry timers that were live before a restart.
func (g *GuildStore) ListTemporaries() ([]model.Temporary, error) {
	var rows []temporaryRow
	if err := g.db.Select(&rows, "SELECT * FROM temporaries ORDER BY recency ASC"); err != nil {
		return nil, fmt.Errorf("failed to list temporaries: %w", err)
	}
	temps := make([]model.Temporary, 0, len(rows))
	for _, row := range rows {
		var record model.PunishmentRecord
		if err := json.Unmarshal([]byte(row.Punishment), &record); err != nil {
			return nil, fmt.Errorf("failed to decode temporary for user %s: %w", row.UserID, err)
		}
		temps = append(temps, model.Temporary{UserID: row.UserID, Record: record, Recency: row.Recency})
	}
	return temps, nil
}
