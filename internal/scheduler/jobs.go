package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teambition/rrule-go"

	"clubsub/internal/club"
	"clubsub/internal/discount"
	"clubsub/internal/enrollment"
	"clubsub/internal/logger"
	"clubsub/internal/metrics"
	"clubsub/internal/plan"
)

// dailyAt builds a next-fire function recurring every day at the given
// wall-clock time in loc. The rule is anchored a day back so the first
// occurrence after now is always found.
func dailyAt(loc *time.Location, hour, min, sec int) func(now time.Time) time.Time {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		anchor := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, loc).AddDate(0, 0, -1)
		rule, err := rrule.NewRRule(rrule.ROption{Freq: rrule.DAILY, Dtstart: anchor})
		if err != nil {
			return now.Add(24 * time.Hour)
		}
		next := rule.After(now, false)
		if next.IsZero() {
			return now.Add(24 * time.Hour)
		}
		return next
	}
}

// ClubRollover advances every slot plan of one club by a day and restores
// seat capacity, firing daily at the club's closing hour.
type ClubRollover struct {
	ClubID    int
	CloseHour *int
	Loc       *time.Location
	Plans     plan.Repository
}

func (j *ClubRollover) Name() string {
	return fmt.Sprintf("club-rollover-%d", j.ClubID)
}

func (j *ClubRollover) Next(now time.Time) time.Time {
	if j.CloseHour != nil {
		return dailyAt(j.Loc, *j.CloseHour, 0, 0)(now)
	}
	return dailyAt(j.Loc, 23, 59, 59)(now)
}

func (j *ClubRollover) Run(ctx context.Context) {
	ids, err := j.Plans.ListSlotPlanIDs(ctx, j.ClubID)
	if err != nil {
		logger.Error("rollover: listing slot plans failed", "club_id", j.ClubID, "error", err)
		return
	}

	// One failed plan must not block its siblings.
	rolled := 0
	for _, id := range ids {
		if err := j.Plans.AdvanceSlotDay(ctx, id); err != nil {
			logger.Error("rollover: advancing slot failed", "club_id", j.ClubID, "plan_id", id, "error", err)
			continue
		}
		metrics.RecordSlotRollover()
		rolled++
	}

	logger.Info("rollover complete", "club_id", j.ClubID, "rolled", rolled, "total", len(ids))
}

// ClubSync re-reads the club list periodically and schedules a rollover
// job for every club it has not seen yet, so new clubs do not need a
// process restart.
type ClubSync struct {
	Clubs     club.Repository
	Plans     plan.Repository
	Loc       *time.Location
	Scheduler *Scheduler
	Interval  time.Duration

	mu   sync.Mutex
	seen map[int]bool
}

func (j *ClubSync) Name() string { return "club-sync" }

func (j *ClubSync) Next(now time.Time) time.Time {
	return now.Add(j.Interval)
}

func (j *ClubSync) Run(ctx context.Context) {
	clubs, err := j.Clubs.ListAll(ctx)
	if err != nil {
		logger.Error("club sync failed", "error", err)
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.seen == nil {
		j.seen = make(map[int]bool)
	}

	for _, c := range clubs {
		if j.seen[c.ID] {
			continue
		}
		j.seen[c.ID] = true
		j.Scheduler.Add(&ClubRollover{
			ClubID:    c.ID,
			CloseHour: c.HoursTo,
			Loc:       j.Loc,
			Plans:     j.Plans,
		})
		logger.Info("rollover scheduled", "club_id", c.ID)
	}
}

// ExpirySweep keeps expired/frozen flags truthful, scoped by the indexed
// end_date and frozen_until columns. Idempotent, so overlap with a
// concurrent run is harmless.
type ExpirySweep struct {
	Enrollments enrollment.Repository
	Interval    time.Duration
}

func (j *ExpirySweep) Name() string { return "expiry-sweep" }

func (j *ExpirySweep) Next(now time.Time) time.Time {
	return now.Add(j.Interval)
}

func (j *ExpirySweep) Run(ctx context.Context) {
	now := time.Now()

	expired, err := j.Enrollments.SweepExpired(ctx, now)
	if err != nil {
		logger.Error("expiry sweep failed", "error", err)
	} else if expired > 0 {
		metrics.RecordSweep("expired", expired)
		logger.Info("enrollments expired", "count", expired)
	}

	unfrozen, err := j.Enrollments.SweepLapsedFreezes(ctx, now)
	if err != nil {
		logger.Error("unfreeze sweep failed", "error", err)
	} else if unfrozen > 0 {
		metrics.RecordSweep("unfrozen", unfrozen)
		logger.Info("freezes lapsed", "count", unfrozen)
	}
}

// DiscountPurge deactivates expired discount codes nightly.
type DiscountPurge struct {
	Discounts discount.Repository
	Loc       *time.Location
}

func (j *DiscountPurge) Name() string { return "discount-purge" }

func (j *DiscountPurge) Next(now time.Time) time.Time {
	return dailyAt(j.Loc, 0, 5, 0)(now)
}

func (j *DiscountPurge) Run(ctx context.Context) {
	n, err := j.Discounts.DeactivateExpired(ctx, time.Now())
	if err != nil {
		logger.Error("discount purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("discounts deactivated", "count", n)
	}
}

// ClubReactivation lifts lapsed club suspensions nightly.
type ClubReactivation struct {
	Clubs club.Repository
	Loc   *time.Location
}

func (j *ClubReactivation) Name() string { return "club-reactivation" }

func (j *ClubReactivation) Next(now time.Time) time.Time {
	return dailyAt(j.Loc, 0, 10, 0)(now)
}

func (j *ClubReactivation) Run(ctx context.Context) {
	n, err := j.Clubs.ReactivateLapsed(ctx, time.Now())
	if err != nil {
		logger.Error("club reactivation failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("clubs reactivated", "count", n)
	}
}

// Setup wires the standard job set: a sync job that fans out per-club
// rollovers, the expiry sweep, and the two nightly cleanups.
func Setup(s *Scheduler, clubs club.Repository, plans plan.Repository, enrollments enrollment.Repository, discounts discount.Repository, loc *time.Location, sweepInterval time.Duration) {
	sync := &ClubSync{
		Clubs:     clubs,
		Plans:     plans,
		Loc:       loc,
		Scheduler: s,
		Interval:  time.Hour,
	}
	// Seed rollover jobs immediately rather than waiting for the first tick.
	sync.Run(context.Background())
	s.Add(sync)

	s.Add(&ExpirySweep{Enrollments: enrollments, Interval: sweepInterval})
	s.Add(&DiscountPurge{Discounts: discounts, Loc: loc})
	s.Add(&ClubReactivation{Clubs: clubs, Loc: loc})
}
