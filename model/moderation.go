package model

import "time"

// PunishmentKind is the category of a moderation action.
type PunishmentKind string

const (
	PunishWarn    PunishmentKind = "warn"
	PunishMute    PunishmentKind = "mute"
	PunishTimeout PunishmentKind = "timeout"
	PunishBan     PunishmentKind = "ban"
)

// PunishmentRecord is a single moderation action against a user.
// Identity is immutable once created; only Reason and ExpiresAt may change.
// ExpiresAt == 0 means the punishment is permanent.
type PunishmentRecord struct {
	ID        int64          `json:"id"`
	Kind      PunishmentKind `json:"kind"`
	Reason    string         `json:"reason,omitempty"`
	IssuedAt  int64          `json:"issued_at"`
	ExpiresAt int64          `json:"expires_at"`
	Moderator string         `json:"moderator"`
}

// Permanent reports whether the record has no expiry.
func (r PunishmentRecord) Permanent() bool {
	return r.ExpiresAt == 0
}

// Profile is the punishment history for one user within one guild.
// Punishments is keyed by record ID; encoding/json writes int64 map keys
// as strings, which is the on-disk format.
type Profile struct {
	UserID      string
	ThreadID    string
	Punishments map[int64]PunishmentRecord
	Recency     int64
}

// NewProfile returns an empty profile for the given user.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:      userID,
		Punishments: make(map[int64]PunishmentRecord),
		Recency:     recencyKey(time.Now()),
	}
}

// recencyKey is the bitwise complement of the unix time, so that an
// ascending index on it returns most-recently-touched rows first.
func recencyKey(t time.Time) int64 {
	return ^t.Unix()
}

// Touch refreshes the profile's recency key.
func (p *Profile) Touch(now time.Time) {
	p.Recency = recencyKey(now)
}

// LatestID returns the numerically highest punishment ID, if any exist.
func (p *Profile) LatestID() (int64, bool) {
	var max int64
	for id := range p.Punishments {
		if id > max {
			max = id
		}
	}
	return max, max > 0
}

// Selector addresses one punishment in a profile, either by explicit ID
// or by the "latest" flag. An explicit ID wins when both are set.
type Selector struct {
	ID     int64
	Latest bool
}

// Resolve maps the selector to a concrete punishment ID in p.
func (sel Selector) Resolve(p *Profile) (int64, bool) {
	switch {
	case sel.ID > 0:
		return sel.ID, true
	case sel.Latest:
		return p.LatestID()
	default:
		return 0, false
	}
}

// AddPunishment appends a new record and returns it. IDs are assigned
// densely per profile, starting at 1, and are never reused.
func (p *Profile) AddPunishment(kind PunishmentKind, reason string, issued, expires time.Time, moderator string) PunishmentRecord {
	p.Touch(issued)
	id, _ := p.LatestID()
	record := PunishmentRecord{
		ID:        id + 1,
		Kind:      kind,
		Reason:    reason,
		IssuedAt:  issued.Unix(),
		Moderator: moderator,
	}
	if !expires.IsZero() {
		record.ExpiresAt = expires.Unix()
	}
	p.Punishments[record.ID] = record
	return record
}

// RemovePunishment deletes the selected record and returns it. Removing a
// record that does not exist is a no-op and returns nil.
func (p *Profile) RemovePunishment(sel Selector, now time.Time) *PunishmentRecord {
	p.Touch(now)
	id, ok := sel.Resolve(p)
	if !ok {
		return nil
	}
	record, ok := p.Punishments[id]
	if !ok {
		return nil
	}
	delete(p.Punishments, id)
	return &record
}

// EditPunishment replaces the reason and/or expiry of the selected record.
// A new duration is measured from the record's original issue time. Editing
// a record that does not exist is a silent no-op; the returned pointer is
// nil in that case.
func (p *Profile) EditPunishment(sel Selector, reason *string, duration *time.Duration, now time.Time) *PunishmentRecord {
	p.Touch(now)
	id, ok := sel.Resolve(p)
	if !ok {
		return nil
	}
	record, ok := p.Punishments[id]
	if !ok {
		return nil
	}
	if reason != nil {
		record.Reason = *reason
	}
	if duration != nil {
		record.ExpiresAt = record.IssuedAt + int64(duration.Seconds())
	}
	p.Punishments[id] = record
	return &record
}

// Temporary mirrors one active finite-duration punishment. It exists so
// that pending expiries survive a restart; the live timer itself is not
// persisted.
type Temporary struct {
	UserID  string
	Record  PunishmentRecord
	Recency int64
}

// NewTemporary builds the mirror row for an active finite punishment.
func NewTemporary(userID string, record PunishmentRecord, now time.Time) Temporary {
	return Temporary{
		UserID:  userID,
		Record:  record,
		Recency: recencyKey(now),
	}
}

// RolePermission gates command usage for one guild role.
type RolePermission struct {
	RoleID string `db:"role_id"`
	Allow  bool   `db:"allow"`
}
