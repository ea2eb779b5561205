package moderation

import (
	"log"
	"time"

	"mod-bot/model"
	"mod-bot/utils/database"
)

// timerKey addresses the single live expiry timer a (guild, user) pair
// may have. Keying by user alone would collide across guilds.
type timerKey struct {
	GuildID string
	UserID  string
}

type activeTimer struct {
	record model.PunishmentRecord
	timer  *time.Timer
}

// armTimer mirrors the record into the guild's temporaries table and
// starts the expiry countdown. Any previous timer for the key is
// cancelled first, so at most one is ever live. A past-due expiry fires
// immediately.
//
// Only the actor goroutine calls this; the timer callback touches no
// actor state and communicates solely by enqueueing a removal request.
func (a *Actor) armTimer(guildID, userID string, record model.PunishmentRecord) {
	key := timerKey{GuildID: guildID, UserID: userID}
	a.cancelTimer(key)

	store, ok := a.stores[guildID]
	if !ok {
		log.Printf("Cannot arm expiry timer for guild %s: store not open", guildID)
		return
	}
	now := a.now()
	if err := store.InsertTemporary(model.NewTemporary(userID, record, now)); err != nil {
		log.Printf("Error persisting temporary punishment for user %s in guild %s: %v", userID, guildID, err)
	}

	remaining := time.Duration(record.ExpiresAt-now.Unix()) * time.Second
	if remaining < 0 {
		remaining = 0
	}
	removal := RemovePunishmentRequest{
		GuildID:  guildID,
		UserID:   userID,
		Selector: model.Selector{ID: record.ID},
		Silent:   true,
	}
	a.timers[key] = &activeTimer{
		record: record,
		timer: time.AfterFunc(remaining, func() {
			a.Enqueue(removal)
		}),
	}
}

// cancelTimer stops the live timer for a key, if any, and deletes its
// persisted mirror. Stopping may race with a natural fire that already
// queued its removal; the duplicate removal is an idempotent no-op.
func (a *Actor) cancelTimer(key timerKey) bool {
	at, ok := a.timers[key]
	if !ok {
		return false
	}
	at.timer.Stop()
	delete(a.timers, key)
	if store, ok := a.stores[key.GuildID]; ok {
		if err := store.DeleteTemporary(key.UserID); err != nil {
			log.Printf("Error deleting temporary punishment for user %s in guild %s: %v", key.UserID, key.GuildID, err)
		}
	}
	return true
}

// liveRecordID returns the ID of the record mirrored by the key's live
// timer, if one exists.
func (a *Actor) liveRecordID(key timerKey) (int64, bool) {
	at, ok := a.timers[key]
	if !ok {
		return 0, false
	}
	return at.record.ID, true
}

// recoverTemporaries re-arms timers for mirror rows that survived a
// restart. Remaining time is clamped to zero, so punishments that
// expired while the process was down are removed right away.
func (a *Actor) recoverTemporaries(guildID string, store *database.GuildStore) {
	temps, err := store.ListTemporaries()
	if err != nil {
		log.Printf("Error recovering temporary punishments for guild %s: %v", guildID, err)
		return
	}
	for _, temp := range temps {
		a.armTimer(guildID, temp.UserID, temp.Record)
	}
	if len(temps) > 0 {
		log.Printf("Re-armed %d expiry timer(s) for guild %s", len(temps), guildID)
	}
}
