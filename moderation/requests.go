package moderation

import (
	"time"

	"mod-bot/model"
)

// RespondFunc delivers the single acknowledgement for a request back to
// its invoker. A nil RespondFunc silences the acknowledgement, which is
// how scheduler-driven removals run.
type RespondFunc func(message string)

// GuildSurfaces names the channels a guild's moderation output goes to.
type GuildSurfaces struct {
	LogChannelID    string `json:"log_channel_id"`
	NotifyChannelID string `json:"notify_channel_id"`
}

// Request is a message consumed by the actor loop. All mutations of
// moderation state travel through one of these; nothing else touches the
// actor's maps.
type Request interface {
	isRequest()
}

// InitRequest hands the actor its collaborator implementations. Sent once
// after the platform session is up.
type InitRequest struct {
	Applier ActionApplier
	Threads ThreadSurface
}

// BuildRequest opens (or creates) a guild's record store and registers
// its output surfaces. Re-building an already-open guild only refreshes
// the surfaces.
type BuildRequest struct {
	GuildID  string
	Surfaces GuildSurfaces
}

// FetchProfileRequest reads one user's history. Deliver receives nil when
// the user has no history.
type FetchProfileRequest struct {
	GuildID string
	UserID  string
	Deliver func(profile *model.Profile)
}

// AddPunishmentRequest records a new punishment, applies the platform
// action, and arms an expiry timer when Duration is non-zero.
type AddPunishmentRequest struct {
	GuildID   string
	UserID    string
	Kind      model.PunishmentKind
	Reason    string
	Duration  time.Duration // 0 = permanent
	Moderator string
	Respond   RespondFunc
}

// EditPunishmentRequest changes the reason and/or duration of an existing
// punishment. A nil field is left untouched; a new duration is measured
// from the record's original issue time.
type EditPunishmentRequest struct {
	GuildID  string
	UserID   string
	Selector model.Selector
	Reason   *string
	Duration *time.Duration
	Respond  RespondFunc
}

// RemovePunishmentRequest deletes a punishment and reverts its platform
// action. Silent suppresses the acknowledgement; the expiry scheduler
// uses that for its own removals.
type RemovePunishmentRequest struct {
	GuildID  string
	UserID   string
	Selector model.Selector
	Silent   bool
	Respond  RespondFunc
}

// RecentProfilesRequest reads the most recently touched profiles in a
// guild, newest first.
type RecentProfilesRequest struct {
	GuildID string
	Limit   int
	Deliver func(profiles []*model.Profile)
}

// RoleAdjustRequest sets the command-usage gate for one guild role.
type RoleAdjustRequest struct {
	GuildID string
	RoleID  string
	Allow   bool
	Respond RespondFunc
}

// RolePermissionQuery asks whether any of the given roles is allowed to
// use moderation commands. Reply must be buffered; roles never seen
// before are created default-deny as a side effect.
type RolePermissionQuery struct {
	GuildID string
	RoleIDs []string
	Reply   chan bool
}

func (InitRequest) isRequest()             {}
func (BuildRequest) isRequest()            {}
func (FetchProfileRequest) isRequest()     {}
func (AddPunishmentRequest) isRequest()    {}
func (EditPunishmentRequest) isRequest()   {}
func (RemovePunishmentRequest) isRequest() {}
func (RecentProfilesRequest) isRequest()   {}
func (RoleAdjustRequest) isRequest()       {}
func (RolePermissionQuery) isRequest()     {}
