package domain

import (
	"context"
	"testing"
	"time"
)

func seedInvitation(t *testing.T, store *fakeStore, n int, status Status, createdAt time.Time, responded time.Duration) Invitation {
	t.Helper()
	record := Invitation{
		ID:             "inv-" + string(rune('a'+n)),
		Token:          testToken(n),
		InviterName:    "Ada",
		RecipientEmail: "a@b.com",
		Status:         status,
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.Add(TTL),
		LastAttemptAt:  createdAt.Add(responded),
	}
	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("seed invitation: %v", err)
	}
	return record
}

func TestStatsEmptyRepository(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeStore(), nil, nil, nil, now)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AcceptanceRate != 0 {
		t.Fatalf("acceptance rate = %v, want 0 on empty repository", stats.AcceptanceRate)
	}
	if stats.AverageResponseTime != 0 {
		t.Fatalf("average response = %v, want 0", stats.AverageResponseTime)
	}
	if len(stats.RecentInvitations) != 0 {
		t.Fatalf("recent = %d, want 0", len(stats.RecentInvitations))
	}
}

func TestStatsCountsAndRates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, nil, nil, now)

	seedInvitation(t, store, 1, StatusSent, now.Add(-time.Hour), 0)
	seedInvitation(t, store, 2, StatusAccepted, now.Add(-2*time.Hour), 30*time.Minute)
	seedInvitation(t, store, 3, StatusAccepted, now.Add(-3*time.Hour), 90*time.Minute)
	seedInvitation(t, store, 4, StatusDeclined, now.Add(-4*time.Hour), time.Hour)
	seedInvitation(t, store, 5, StatusExpired, now.Add(-8*24*time.Hour), 0)
	seedInvitation(t, store, 6, StatusPending, now.Add(-time.Minute), 0)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSent != 4 {
		t.Fatalf("total sent = %d, want 4 (sent+accepted+declined)", stats.TotalSent)
	}
	if stats.TotalAccepted != 2 || stats.TotalDeclined != 1 || stats.TotalExpired != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1", stats.TotalAccepted, stats.TotalDeclined, stats.TotalExpired)
	}
	if stats.AcceptanceRate != 50 {
		t.Fatalf("acceptance rate = %v, want 50", stats.AcceptanceRate)
	}
	if stats.AverageResponseTime != time.Hour {
		t.Fatalf("average response = %v, want 1h", stats.AverageResponseTime)
	}
}

func TestStatsRecentWindowSortedAndCapped(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, nil, nil, now)

	// Thirteen records inside the window plus one outside it.
	for i := 0; i < 13; i++ {
		seedInvitation(t, store, i, StatusSent, now.Add(-time.Duration(i)*time.Hour), 0)
	}
	seedInvitation(t, store, 20, StatusSent, now.Add(-RecentWindow-time.Hour), 0)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.RecentInvitations) != RecentLimit {
		t.Fatalf("recent = %d, want cap %d", len(stats.RecentInvitations), RecentLimit)
	}
	for i := 1; i < len(stats.RecentInvitations); i++ {
		if stats.RecentInvitations[i].CreatedAt.After(stats.RecentInvitations[i-1].CreatedAt) {
			t.Fatal("recent invitations are not sorted newest first")
		}
	}
}
