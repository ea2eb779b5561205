package moderation

import (
	"fmt"
	"log"
	"sync"
	"time"

	"mod-bot/model"
	"mod-bot/utils/database"
)

const requestQueueSize = 256

// Actor owns every guild's record store, the guild surface table and the
// live expiry timers. One goroutine consumes requests in queue order
// across all guilds; no other goroutine ever touches the owned maps, so
// none of them are locked. Expiry timers interact with the actor only by
// enqueueing requests.
type Actor struct {
	requests chan Request
	stores   map[string]*database.GuildStore
	surfaces map[string]GuildSurfaces
	timers   map[timerKey]*activeTimer

	applier ActionApplier
	threads ThreadSurface

	dataDir  string
	now      func() time.Time
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewActor prepares an actor rooted at dataDir. Start must be called
// before requests are enqueued.
func NewActor(dataDir string) *Actor {
	return &Actor{
		requests: make(chan Request, requestQueueSize),
		stores:   make(map[string]*database.GuildStore),
		surfaces: make(map[string]GuildSurfaces),
		timers:   make(map[timerKey]*activeTimer),
		dataDir:  dataDir,
		now:      time.Now,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the processing loop.
func (a *Actor) Start() {
	go a.loop()
}

// Stop ends the loop after the current request, stops every live timer
// and closes the guild stores. Queued requests are not drained. The
// persisted temporaries stay on disk so the timers re-arm on the next
// start.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
	<-a.done
}

// Enqueue submits a request for processing. Requests arriving after
// Stop are dropped with a log line; a late timer fire during shutdown
// lands here.
func (a *Actor) Enqueue(req Request) {
	select {
	case a.requests <- req:
	case <-a.done:
		log.Printf("Moderation actor stopped, dropping %T", req)
	}
}

func (a *Actor) loop() {
	defer close(a.done)
	for {
		select {
		case req := <-a.requests:
			a.handle(req)
		case <-a.quit:
			a.shutdown()
			return
		}
	}
}

func (a *Actor) handle(req Request) {
	switch r := req.(type) {
	case InitRequest:
		a.applier = r.Applier
		a.threads = r.Threads
	case BuildRequest:
		a.handleBuild(r)
	case FetchProfileRequest:
		a.handleFetchProfile(r)
	case AddPunishmentRequest:
		a.handleAdd(r)
	case EditPunishmentRequest:
		a.handleEdit(r)
	case RemovePunishmentRequest:
		a.handleRemove(r)
	case RecentProfilesRequest:
		a.handleRecentProfiles(r)
	case RoleAdjustRequest:
		a.handleRoleAdjust(r)
	case RolePermissionQuery:
		a.handleRoleQuery(r)
	default:
		log.Printf("Moderation actor received unknown request %T", req)
	}
}

func (a *Actor) shutdown() {
	for _, at := range a.timers {
		at.timer.Stop()
	}
	for guildID, store := range a.stores {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store for guild %s: %v", guildID, err)
		}
	}
}

// guildStore resolves the store for a guild. Requests against a guild
// that was never built are rejected with a log line, never an error to
// the caller.
func (a *Actor) guildStore(guildID string) (*database.GuildStore, bool) {
	store, ok := a.stores[guildID]
	if !ok {
		log.Printf("Ignoring request for uninitialized guild %s", guildID)
	}
	return store, ok
}

func (a *Actor) handleBuild(req BuildRequest) {
	a.surfaces[req.GuildID] = req.Surfaces
	if _, ok := a.stores[req.GuildID]; ok {
		// Reopening the same file a second time is unsafe; reuse the handle.
		return
	}
	store, err := database.OpenGuildStore(a.dataDir, req.GuildID)
	if err != nil {
		log.Printf("Failed to initialize database for guild %s: %v", req.GuildID, err)
		return
	}
	a.stores[req.GuildID] = store
	a.recoverTemporaries(req.GuildID, store)
}

func (a *Actor) handleFetchProfile(req FetchProfileRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	profile, err := store.FindProfile(req.UserID)
	if err != nil {
		log.Printf("Error retrieving profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
	}
	if req.Deliver != nil {
		req.Deliver(profile)
	}
}

func (a *Actor) handleAdd(req AddPunishmentRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	now := a.now()
	profile, err := store.FindProfile(req.UserID)
	if err != nil {
		log.Printf("Error retrieving profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		respond(req.Respond, "Failed to record the punishment.")
		return
	}
	created := profile == nil
	if created {
		profile = model.NewProfile(req.UserID)
	}

	var expires time.Time
	if req.Duration > 0 {
		expires = now.Add(req.Duration)
	}
	record := profile.AddPunishment(req.Kind, req.Reason, now, expires, req.Moderator)

	// The moderation thread is a rendering surface, not a platform
	// action; it is created lazily before the first persist so its
	// handle lands in the same row.
	if created && a.threads != nil {
		if surf, ok := a.surfaces[req.GuildID]; ok && surf.LogChannelID != "" {
			threadID, err := a.threads.Create(surf.LogChannelID, req.UserID, profile)
			if err != nil {
				log.Printf("Error creating moderation thread for user %s in guild %s: %v", req.UserID, req.GuildID, err)
			} else {
				profile.ThreadID = threadID
			}
		}
	}

	// Persist before the platform action: an action is never taken
	// without a durable record of it.
	if err := store.UpsertProfile(profile); err != nil {
		log.Printf("Error persisting profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		respond(req.Respond, "Failed to record the punishment.")
		return
	}

	msg := fmt.Sprintf("Added %s punishment #%d for <@%s>.", record.Kind, record.ID, req.UserID)
	if a.applier != nil {
		if err := a.applier.Apply(req.GuildID, req.UserID, record); err != nil {
			log.Printf("Error applying %s to user %s in guild %s: %v", record.Kind, req.UserID, req.GuildID, err)
			msg = fmt.Sprintf("Recorded %s punishment #%d for <@%s>, but applying it failed: %v", record.Kind, record.ID, req.UserID, err)
		}
	}

	if req.Duration > 0 {
		a.armTimer(req.GuildID, req.UserID, record)
	}
	if !created {
		a.updateThread(profile)
	}
	respond(req.Respond, msg)
}

func (a *Actor) handleEdit(req EditPunishmentRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	profile, err := store.FindProfile(req.UserID)
	if err != nil {
		log.Printf("Error retrieving profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		respond(req.Respond, "Failed to edit the punishment.")
		return
	}
	if profile == nil {
		respond(req.Respond, fmt.Sprintf("<@%s> has no punishment history.", req.UserID))
		return
	}

	record := profile.EditPunishment(req.Selector, req.Reason, req.Duration, a.now())
	if record == nil {
		respond(req.Respond, "No matching punishment to edit.")
		return
	}
	if err := store.UpsertProfile(profile); err != nil {
		log.Printf("Error persisting profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		respond(req.Respond, "Failed to edit the punishment.")
		return
	}

	// If the edited record drives a live timer, its end time moved: the
	// old countdown is useless and a fresh one is armed in its place.
	if req.Duration != nil {
		key := timerKey{GuildID: req.GuildID, UserID: req.UserID}
		if liveID, ok := a.liveRecordID(key); ok && liveID == record.ID {
			a.armTimer(req.GuildID, req.UserID, *record)
		}
	}

	a.updateThread(profile)
	respond(req.Respond, fmt.Sprintf("Edited punishment #%d for <@%s>.", record.ID, req.UserID))
}

func (a *Actor) handleRemove(req RemovePunishmentRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	profile, err := store.FindProfile(req.UserID)
	if err != nil {
		log.Printf("Error retrieving profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		if !req.Silent {
			respond(req.Respond, "Failed to remove the punishment.")
		}
		return
	}
	if profile == nil {
		if !req.Silent {
			respond(req.Respond, fmt.Sprintf("<@%s> has no punishment history.", req.UserID))
		}
		return
	}

	removed := profile.RemovePunishment(req.Selector, a.now())
	if removed == nil {
		// Duplicate removal from an overlapping cancel and fire ends up
		// here; nothing changed, nothing to persist.
		if !req.Silent {
			respond(req.Respond, "No matching punishment to remove.")
		}
		return
	}
	if err := store.UpsertProfile(profile); err != nil {
		log.Printf("Error persisting profile for user %s in guild %s: %v", req.UserID, req.GuildID, err)
		if !req.Silent {
			respond(req.Respond, "Failed to remove the punishment.")
		}
		return
	}

	key := timerKey{GuildID: req.GuildID, UserID: req.UserID}
	if liveID, ok := a.liveRecordID(key); ok && liveID == removed.ID {
		a.cancelTimer(key)
	}

	msg := fmt.Sprintf("Removed punishment #%d for <@%s>.", removed.ID, req.UserID)
	if a.applier != nil {
		if err := a.applier.Revert(req.GuildID, req.UserID, *removed); err != nil {
			log.Printf("Error reverting %s for user %s in guild %s: %v", removed.Kind, req.UserID, req.GuildID, err)
			msg = fmt.Sprintf("Removed punishment #%d for <@%s>, but reverting it failed: %v", removed.ID, req.UserID, err)
		}
	}

	a.updateThread(profile)
	if !req.Silent {
		respond(req.Respond, msg)
	}
}

func (a *Actor) handleRecentProfiles(req RecentProfilesRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	profiles, err := store.RecentProfiles(req.Limit)
	if err != nil {
		log.Printf("Error listing recent profiles for guild %s: %v", req.GuildID, err)
	}
	if req.Deliver != nil {
		req.Deliver(profiles)
	}
}

func (a *Actor) handleRoleAdjust(req RoleAdjustRequest) {
	store, ok := a.guildStore(req.GuildID)
	if !ok {
		return
	}
	perm := model.RolePermission{RoleID: req.RoleID, Allow: req.Allow}
	if err := store.UpsertRolePermission(perm); err != nil {
		log.Printf("Error upserting role permission for role %s in guild %s: %v", req.RoleID, req.GuildID, err)
		respond(req.Respond, "Failed to update the role permission.")
		return
	}
	verb := "denied"
	if req.Allow {
		verb = "allowed"
	}
	respond(req.Respond, fmt.Sprintf("Role <@&%s> is now %s to use moderation commands.", req.RoleID, verb))
}

func (a *Actor) handleRoleQuery(req RolePermissionQuery) {
	allowed := false
	if store, ok := a.stores[req.GuildID]; ok {
		for _, roleID := range req.RoleIDs {
			perm, err := store.FindRolePermission(roleID)
			if err != nil {
				log.Printf("Error retrieving role permission for role %s in guild %s: %v", roleID, req.GuildID, err)
				continue
			}
			if perm.Allow {
				allowed = true
				break
			}
		}
	}
	req.Reply <- allowed
}

func (a *Actor) updateThread(profile *model.Profile) {
	if a.threads == nil || profile.ThreadID == "" {
		return
	}
	if err := a.threads.Update(profile.ThreadID, profile); err != nil {
		log.Printf("Error updating moderation thread %s: %v", profile.ThreadID, err)
	}
}

func respond(fn RespondFunc, message string) {
	if fn != nil {
		fn(message)
	}
}
