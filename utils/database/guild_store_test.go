package database

import (
	"testing"
	"time"

	"mod-bot/model"
)

func openTestStore(t *testing.T) *GuildStore {
	t.Helper()
	store, err := OpenGuildStore(t.TempDir(), "100")
	if err != nil {
		t.Fatalf("open guild store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFindProfileMissingIsNotAnError(t *testing.T) {
	store := openTestStore(t)
	profile, err := store.FindProfile("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile != nil {
		t.Fatalf("missing profile returned %+v, want nil", profile)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	store := openTestStore(t)
	now := time.Unix(1700000000, 0)

	p := model.NewProfile("42")
	p.ThreadID = "555"
	p.AddPunishment(model.PunishWarn, "spam", now, time.Time{}, "7")
	p.AddPunishment(model.PunishMute, "toxic", now, now.Add(time.Hour), "7")
	if err := store.UpsertProfile(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := store.FindProfile("42")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded == nil {
		t.Fatal("profile not found after upsert")
	}
	if loaded.ThreadID != "555" {
		t.Errorf("thread id = %q, want %q", loaded.ThreadID, "555")
	}
	if len(loaded.Punishments) != 2 {
		t.Fatalf("got %d punishments, want 2", len(loaded.Punishments))
	}
	if got := loaded.Punishments[2]; got.Kind != model.PunishMute || got.ExpiresAt != now.Add(time.Hour).Unix() {
		t.Errorf("punishment 2 round trip mismatch: %+v", got)
	}
}

func TestUpsertProfileReplaces(t *testing.T) {
	store := openTestStore(t)
	now := time.Unix(1700000000, 0)

	p := model.NewProfile("42")
	p.AddPunishment(model.PunishWarn, "spam", now, time.Time{}, "7")
	if err := store.UpsertProfile(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p.RemovePunishment(model.Selector{ID: 1}, now)
	if err := store.UpsertProfile(p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	loaded, err := store.FindProfile("42")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(loaded.Punishments) != 0 {
		t.Fatalf("got %d punishments after removal, want 0", len(loaded.Punishments))
	}
}

func TestRecentProfilesNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Unix(1700000000, 0)

	for i, userID := range []string{"1", "2", "3"} {
		p := model.NewProfile(userID)
		p.Touch(base.Add(time.Duration(i) * time.Minute))
		if err := store.UpsertProfile(p); err != nil {
			t.Fatalf("upsert %s: %v", userID, err)
		}
	}

	recent, err := store.RecentProfiles(2)
	if err != nil {
		t.Fatalf("recent profiles: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d profiles, want 2", len(recent))
	}
	if recent[0].UserID != "3" || recent[1].UserID != "2" {
		t.Errorf("order = [%s %s], want [3 2]", recent[0].UserID, recent[1].UserID)
	}
}

func TestRolePermissionDefaultDenyCreatedOnRead(t *testing.T) {
	store := openTestStore(t)

	perm, err := store.FindRolePermission("900")
	if err != nil {
		t.Fatalf("find role permission: %v", err)
	}
	if perm.Allow {
		t.Fatal("first lookup should default to deny")
	}

	if err := store.UpsertRolePermission(model.RolePermission{RoleID: "900", Allow: true}); err != nil {
		t.Fatalf("upsert role permission: %v", err)
	}
	perm, err = store.FindRolePermission("900")
	if err != nil {
		t.Fatalf("second find: %v", err)
	}
	if !perm.Allow {
		t.Fatal("allow flag not persisted")
	}
}

func TestTemporariesLifecycle(t *testing.T) {
	store := openTestStore(t)
	now := time.Unix(1700000000, 0)

	record := model.PunishmentRecord{
		ID: 2, Kind: model.PunishMute, IssuedAt: now.Unix(), ExpiresAt: now.Add(time.Hour).Unix(), Moderator: "7",
	}
	if err := store.InsertTemporary(model.NewTemporary("42", record, now)); err != nil {
		t.Fatalf("insert temporary: %v", err)
	}

	temps, err := store.ListTemporaries()
	if err != nil {
		t.Fatalf("list temporaries: %v", err)
	}
	if len(temps) != 1 || temps[0].Record.ID != 2 {
		t.Fatalf("got %+v, want one mirror of record 2", temps)
	}

	// Arming a replacement for the same user overwrites, never duplicates.
	record.ID = 3
	if err := store.InsertTemporary(model.NewTemporary("42", record, now)); err != nil {
		t.Fatalf("replace temporary: %v", err)
	}
	temps, _ = store.ListTemporaries()
	if len(temps) != 1 || temps[0].Record.ID != 3 {
		t.Fatalf("got %+v, want single mirror of record 3", temps)
	}

	if err := store.DeleteTemporary("42"); err != nil {
		t.Fatalf("delete temporary: %v", err)
	}
	if err := store.DeleteTemporary("42"); err != nil {
		t.Fatalf("repeat delete should be a no-op, got %v", err)
	}
	temps, _ = store.ListTemporaries()
	if len(temps) != 0 {
		t.Fatalf("got %d temporaries after delete, want 0", len(temps))
	}
}

func TestOpenGuildStoreCreatesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenGuildStore(dir, "200")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if store.Path == "" || store.GuildID != "200" {
		t.Fatalf("unexpected store identity: %+v", store)
	}

	// A fresh handle against the same file sees previously written rows.
	p := model.NewProfile("1")
	if err := store.UpsertProfile(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	store.Close()

	reopened, err := OpenGuildStore(dir, "200")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	loaded, err := reopened.FindProfile("1")
	if err != nil || loaded == nil {
		t.Fatalf("profile lost across reopen: %v %v", loaded, err)
	}
}
