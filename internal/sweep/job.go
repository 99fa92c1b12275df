package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/membership"
	"github.com/cavos-labs/forma-api/internal/metrics"
	"github.com/cavos-labs/forma-api/internal/notification"
)

// Job walks memberships once a day and advances the ones whose dates ran
// out: active past end date become expired, expired past the grace period
// become inactive. A membership expired by the first pass is never
// deactivated by the second pass of the same run.
type Job struct {
	memberships   membership.Store
	notifications notification.Store
	now           func() time.Time
}

func NewJob(memberships membership.Store, notifications notification.Store) *Job {
	return &Job{
		memberships:   memberships,
		notifications: notifications,
		now:           time.Now,
	}
}

// WithClock fixes the job's notion of now.
func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// ItemResult records what happened to one membership during a run.
type ItemResult struct {
	MembershipID string `json:"membership_id"`
	UserEmail    string `json:"user_email"`
	GymName      string `json:"gym_name"`
	Action       string `json:"action"`
	Error        string `json:"error,omitempty"`
}

// Summary is the run report returned to the cron caller.
type Summary struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Processed int          `json:"processed"`
	Expired   int          `json:"expired"`
	Inactive  int          `json:"inactive"`
	Results   []ItemResult `json:"results"`
	Timestamp time.Time    `json:"timestamp"`
}

// Run executes both passes. Per-membership failures are recorded in the
// summary and do not stop the sweep.
func (j *Job) Run(ctx context.Context) (*Summary, error) {
	now := j.now()
	summary := &Summary{
		Success:   true,
		Message:   "Daily verification completed",
		Results:   []ItemResult{},
		Timestamp: now,
	}

	touched := map[string]bool{}

	active, err := j.memberships.ListActiveExpiring(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active memberships: %w", err)
	}

	for _, m := range active {
		summary.Processed++
		if m.EndDate == nil || !membership.IsExpiredAt(*m.EndDate, membership.EndDateToleranceDays, now) {
			continue
		}

		res := ItemResult{MembershipID: m.ID, UserEmail: m.UserEmail, GymName: m.GymName, Action: "expired"}
		if err := j.expire(ctx, m); err != nil {
			logger.Errorf("Expiring membership %s failed: %v", m.ID, err)
			res.Action = "error"
			res.Error = err.Error()
		} else {
			touched[m.ID] = true
			summary.Expired++
			metrics.MembershipsExpiredTotal.Inc()
		}
		summary.Results = append(summary.Results, res)
	}

	inGrace, err := j.memberships.ListExpiredInGrace(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expired memberships: %w", err)
	}

	for _, m := range inGrace {
		if touched[m.ID] {
			continue
		}
		summary.Processed++
		if m.GracePeriodEnd == nil || !membership.IsExpiredAt(*m.GracePeriodEnd, 0, now) {
			continue
		}

		res := ItemResult{MembershipID: m.ID, UserEmail: m.UserEmail, GymName: m.GymName, Action: "deactivated"}
		if err := j.deactivate(ctx, m); err != nil {
			logger.Errorf("Deactivating membership %s failed: %v", m.ID, err)
			res.Action = "error"
			res.Error = err.Error()
		} else {
			summary.Inactive++
			metrics.MembershipsDeactivatedTotal.Inc()
		}
		summary.Results = append(summary.Results, res)
	}

	logger.Infof("Membership sweep finished: processed=%d expired=%d inactive=%d", summary.Processed, summary.Expired, summary.Inactive)
	return summary, nil
}

func (j *Job) expire(ctx context.Context, m membership.Detail) error {
	if err := j.memberships.UpdateStatus(ctx, m.ID, membership.StatusExpired); err != nil {
		return err
	}

	title := "Membresía Expirada"
	message := fmt.Sprintf(
		"Hola %s, tu membresía en %s ha expirado. Tienes %d días de gracia para renovar tu pago antes de que tu membresía sea desactivada.",
		m.UserFirstName, m.GymName, membership.GraceDays,
	)
	if err := j.notifications.Create(ctx, m.UserID, m.ID, notification.TypeMembershipExpired, title, message); err != nil {
		// The status change already happened; the notification is best effort.
		logger.Errorf("Expiration notification failed for membership %s: %v", m.ID, err)
	}
	return nil
}

func (j *Job) deactivate(ctx context.Context, m membership.Detail) error {
	if err := j.memberships.UpdateStatus(ctx, m.ID, membership.StatusInactive); err != nil {
		return err
	}

	title := "Período de Gracia Expirado"
	message := fmt.Sprintf(
		"Hola %s, el período de gracia de tu membresía en %s ha terminado y tu membresía ha sido desactivada. Contacta a tu gimnasio para reactivarla.",
		m.UserFirstName, m.GymName,
	)
	if err := j.notifications.Create(ctx, m.UserID, m.ID, notification.TypeGracePeriodEnding, title, message); err != nil {
		logger.Errorf("Deactivation notification failed for membership %s: %v", m.ID, err)
	}
	return nil
}
