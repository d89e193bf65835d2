package domain

import (
	"context"
	"sort"
	"time"
)

const (
	// RecentWindow bounds the analytics view of recent invitations.
	RecentWindow = 7 * 24 * time.Hour
	// RecentLimit caps the recent invitations list.
	RecentLimit = 10
)

// Stats summarizes invitation lifecycle outcomes over the whole repository.
type Stats struct {
	// TotalSent counts invitations where at least one channel hand-off
	// completed: a record in sent, accepted, or declined.
	TotalSent     int
	TotalAccepted int
	TotalDeclined int
	TotalExpired  int
	// AcceptanceRate is accepted/sent as a percentage; 0 when nothing sent.
	AcceptanceRate float64
	// AverageResponseTime is the mean of LastAttemptAt-CreatedAt over
	// accepted invitations; 0 when none were accepted.
	AverageResponseTime time.Duration
	// RecentInvitations holds invitations created inside RecentWindow,
	// newest first, capped at RecentLimit.
	RecentInvitations []Invitation
}

// Stats computes lifecycle statistics over every stored invitation.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := s.clock().UTC()
	stats := Stats{}
	var responseTotal time.Duration

	for _, record := range records {
		switch record.Status {
		case StatusSent:
			stats.TotalSent++
		case StatusAccepted:
			stats.TotalSent++
			stats.TotalAccepted++
			responseTotal += record.LastAttemptAt.Sub(record.CreatedAt)
		case StatusDeclined:
			stats.TotalSent++
			stats.TotalDeclined++
		case StatusExpired:
			stats.TotalExpired++
		}
		if now.Sub(record.CreatedAt) <= RecentWindow {
			stats.RecentInvitations = append(stats.RecentInvitations, record)
		}
	}

	if stats.TotalSent > 0 {
		stats.AcceptanceRate = float64(stats.TotalAccepted) / float64(stats.TotalSent) * 100
	}
	if stats.TotalAccepted > 0 {
		stats.AverageResponseTime = responseTotal / time.Duration(stats.TotalAccepted)
	}

	sort.Slice(stats.RecentInvitations, func(i, j int) bool {
		return stats.RecentInvitations[i].CreatedAt.After(stats.RecentInvitations[j].CreatedAt)
	})
	if len(stats.RecentInvitations) > RecentLimit {
		stats.RecentInvitations = stats.RecentInvitations[:RecentLimit]
	}

	return stats, nil
}
