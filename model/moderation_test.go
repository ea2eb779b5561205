package model

import (
	"encoding/json"
	"testing"
	"time"
)

var testNow = time.Unix(1700000000, 0)

func addN(t *testing.T, p *Profile, n int) []PunishmentRecord {
	t.Helper()
	records := make([]PunishmentRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, p.AddPunishment(PunishWarn, "", testNow, time.Time{}, "mod"))
	}
	return records
}

func TestAddPunishmentAssignsDenseIDs(t *testing.T) {
	p := NewProfile("42")
	kinds := []PunishmentKind{PunishWarn, PunishBan, PunishMute, PunishTimeout}
	for i, kind := range kinds {
		record := p.AddPunishment(kind, "r", testNow, time.Time{}, "mod")
		if record.ID != int64(i+1) {
			t.Fatalf("punishment %d: got ID %d, want %d", i, record.ID, i+1)
		}
	}
}

func TestIDsNotReusedAfterRemoval(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 3)
	if removed := p.RemovePunishment(Selector{ID: 3}, testNow); removed == nil {
		t.Fatal("expected removal of ID 3")
	}
	record := p.AddPunishment(PunishWarn, "", testNow, time.Time{}, "mod")
	if record.ID != 4 {
		t.Fatalf("got ID %d after removing 3, want 4", record.ID)
	}
}

func TestRemoveByIDLeavesOthersUntouched(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 3)
	before := make(map[int64]PunishmentRecord)
	for id, r := range p.Punishments {
		before[id] = r
	}

	removed := p.RemovePunishment(Selector{ID: 2}, testNow)
	if removed == nil || removed.ID != 2 {
		t.Fatalf("got %+v, want removal of ID 2", removed)
	}
	for _, id := range []int64{1, 3} {
		if p.Punishments[id] != before[id] {
			t.Errorf("record %d changed by unrelated removal", id)
		}
	}
}

func TestRemoveLatestIsNumeric(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 10)

	// "10" sorts before "2" lexically; latest must still be 10.
	removed := p.RemovePunishment(Selector{Latest: true}, testNow)
	if removed == nil || removed.ID != 10 {
		t.Fatalf("got %+v, want removal of ID 10", removed)
	}
	if removed = p.RemovePunishment(Selector{Latest: true}, testNow); removed.ID != 9 {
		t.Fatalf("got ID %d, want 9", removed.ID)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 2)
	if removed := p.RemovePunishment(Selector{ID: 2}, testNow); removed == nil {
		t.Fatal("first removal should succeed")
	}
	if removed := p.RemovePunishment(Selector{ID: 2}, testNow); removed != nil {
		t.Fatalf("second removal returned %+v, want nil", removed)
	}
	if len(p.Punishments) != 1 {
		t.Fatalf("got %d punishments, want 1", len(p.Punishments))
	}
}

func TestRemoveWithEmptySelectorIsNoop(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 2)
	if removed := p.RemovePunishment(Selector{}, testNow); removed != nil {
		t.Fatalf("empty selector removed %+v", removed)
	}
	if len(p.Punishments) != 2 {
		t.Fatalf("got %d punishments, want 2", len(p.Punishments))
	}
}

func TestEditPunishmentOnlyTouchesGivenFields(t *testing.T) {
	p := NewProfile("42")
	expires := testNow.Add(time.Hour)
	original := p.AddPunishment(PunishMute, "toxic", testNow, expires, "mod")

	newReason := "spam"
	edited := p.EditPunishment(Selector{ID: original.ID}, &newReason, nil, testNow)
	if edited == nil {
		t.Fatal("edit returned nil")
	}
	if edited.Reason != "spam" {
		t.Errorf("reason = %q, want %q", edited.Reason, "spam")
	}
	if edited.ExpiresAt != original.ExpiresAt {
		t.Errorf("expiry changed by reason-only edit: %d != %d", edited.ExpiresAt, original.ExpiresAt)
	}

	newDur := 2 * time.Hour
	edited = p.EditPunishment(Selector{ID: original.ID}, nil, &newDur, testNow)
	if edited.Reason != "spam" {
		t.Errorf("reason changed by duration-only edit: %q", edited.Reason)
	}
	if want := original.IssuedAt + 7200; edited.ExpiresAt != want {
		t.Errorf("expiry = %d, want %d (issue time + duration)", edited.ExpiresAt, want)
	}
}

func TestEditMissingRecordIsSilentNoop(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 1)
	reason := "changed"
	if edited := p.EditPunishment(Selector{ID: 99}, &reason, nil, testNow); edited != nil {
		t.Fatalf("edit of missing record returned %+v", edited)
	}
	if p.Punishments[1].Reason != "" {
		t.Errorf("unrelated record modified: %q", p.Punishments[1].Reason)
	}
}

func TestRecencyKeyOrdersNewestFirstAscending(t *testing.T) {
	older := NewProfile("1")
	older.Touch(testNow)
	newer := NewProfile("2")
	newer.Touch(testNow.Add(time.Minute))

	// Ascending order over the complement puts the newest first.
	if newer.Recency >= older.Recency {
		t.Fatalf("newer recency %d not below older %d", newer.Recency, older.Recency)
	}
}

func TestPunishmentMapSerializesWithStringKeys(t *testing.T) {
	p := NewProfile("42")
	addN(t, p, 2)
	raw, err := json.Marshal(p.Punishments)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]PunishmentRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal into string-keyed map: %v", err)
	}
	if _, ok := decoded["1"]; !ok {
		t.Fatalf("expected string key \"1\" in %s", raw)
	}

	var roundTrip map[int64]PunishmentRecord
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if roundTrip[2].ID != 2 {
		t.Errorf("round-tripped record 2 = %+v", roundTrip[2])
	}
}
