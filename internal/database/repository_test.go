package database

import (
	"testing"
	"time"

	"github.com/eyeremote/eyeremote/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(":memory:")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestRepository_Events(t *testing.T) {
	repo := newTestRepo(t)

	if ev, err := repo.GetLatestEvent(); err != nil || ev != nil {
		t.Fatalf("GetLatestEvent() on empty store = %v, %v", ev, err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []*models.Event{
		{Kind: "session_start", Component: "controller", Timestamp: base},
		{Kind: "decision_pause", Component: "controller", Timestamp: base.Add(time.Minute)},
		{Kind: "dispatch_sent", Component: "dispatch", Timestamp: base.Add(time.Minute), Method: "direct"},
		{Kind: "decision_pause", Component: "controller", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, ev := range rows {
		if err := repo.CreateEvent(ev); err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
	}

	latest, err := repo.GetLatestEvent()
	if err != nil {
		t.Fatalf("GetLatestEvent() error = %v", err)
	}
	if !latest.Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("latest timestamp = %v", latest.Timestamp)
	}

	between, err := repo.GetEventsBetween(base, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("GetEventsBetween() error = %v", err)
	}
	if len(between) != 3 {
		t.Errorf("GetEventsBetween() returned %d events, want 3", len(between))
	}
	// ties on timestamp keep insertion order
	if between[1].Kind != "decision_pause" || between[2].Kind != "dispatch_sent" {
		t.Errorf("order = %s, %s", between[1].Kind, between[2].Kind)
	}

	counts, err := repo.CountKindsSince(base)
	if err != nil {
		t.Fatalf("CountKindsSince() error = %v", err)
	}
	if len(counts) != 3 || counts[0].Kind != "decision_pause" || counts[0].Count != 2 {
		t.Errorf("CountKindsSince() = %+v", counts)
	}

	recent, err := repo.GetRecentEvents(2)
	if err != nil {
		t.Fatalf("GetRecentEvents() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Timestamp.Before(recent[1].Timestamp) {
		t.Errorf("GetRecentEvents() not newest first: %+v", recent)
	}

	n, err := repo.DeleteOldEvents(base.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("DeleteOldEvents() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteOldEvents() removed %d, want 1", n)
	}
	left, _ := repo.GetEventsSince(time.Time{})
	if len(left) != 3 {
		t.Errorf("%d events left after prune, want 3", len(left))
	}
}

func TestRepository_ErrorsAndClear(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	for i, msg := range []string{"camera busy", "camera gone"} {
		err := repo.CreateErrorLog(&models.ErrorLog{
			SessionID: "s1",
			Timestamp: now.Add(time.Duration(i) * time.Second),
			ErrorMsg:  msg,
		})
		if err != nil {
			t.Fatalf("CreateErrorLog() error = %v", err)
		}
	}
	if err := repo.CreateEvent(&models.Event{Kind: "session_start", Component: "controller"}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	errs, err := repo.GetRecentErrors(1)
	if err != nil {
		t.Fatalf("GetRecentErrors() error = %v", err)
	}
	if len(errs) != 1 || errs[0].ErrorMsg != "camera gone" {
		t.Errorf("GetRecentErrors(1) = %+v", errs)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ev, _ := repo.GetLatestEvent(); ev != nil {
		t.Errorf("event left after Clear: %+v", ev)
	}
	if errs, _ := repo.GetRecentErrors(10); len(errs) != 0 {
		t.Errorf("%d error logs left after Clear", len(errs))
	}
}
