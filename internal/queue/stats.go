package queue

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tableq/tableq/internal/domain"
)

// Stats is the dashboard summary across all restaurants.
type Stats struct {
	TotalWaiting        int            `json:"total_waiting"`
	AvgWaitMinutes      int            `json:"avg_wait_minutes"`
	TablesServedToday   int            `json:"tables_served_today"`
	WaitingByRestaurant map[string]int `json:"waiting_by_restaurant"`
}

// ComputeStats summarizes the queue as of now. The average wait is the fixed
// promise while anyone is waiting, matching the ETA model.
func (s *Service) ComputeStats(ctx context.Context, now time.Time) (Stats, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "list entries")
	}

	stats := Stats{WaitingByRestaurant: make(map[string]int)}
	for _, e := range entries {
		switch e.Status {
		case domain.StatusWaiting:
			stats.TotalWaiting++
			stats.WaitingByRestaurant[e.Restaurant]++
		case domain.StatusSeated:
			if sameDay(e.JoinTime, now) {
				stats.TablesServedToday++
			}
		}
	}
	if stats.TotalWaiting > 0 {
		stats.AvgWaitMinutes = int(s.wait.Minutes())
	}
	return stats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
