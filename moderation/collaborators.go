package moderation

import "mod-bot/model"

// ActionApplier maps a punishment record onto platform effects (ban,
// role grant, communication timeout). Errors are reported to the invoker
// but never roll back the already-persisted record.
type ActionApplier interface {
	Apply(guildID, userID string, record model.PunishmentRecord) error
	Revert(guildID, userID string, record model.PunishmentRecord) error
}

// ThreadSurface keeps a human-readable moderation history visible, one
// thread per profile in the guild's log channel. Failures are logged and
// never block the record mutation.
type ThreadSurface interface {
	// Create opens the profile's thread in the log channel and returns
	// its channel ID.
	Create(logChannelID, userID string, profile *model.Profile) (string, error)
	// Update rewrites the thread's head message with the current history.
	Update(threadID string, profile *model.Profile) error
}
