// Package task runs the background jobs of the service.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type Cleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

// ExpiryControl purges expired refresh tokens every day at midnight in
// Location. Now and After are swappable for tests.
type ExpiryControl struct {
	Cleaner  Cleaner
	Location *time.Location
	Now      func() time.Time
	After    func(time.Duration) <-chan time.Time
}

func NewExpiryControl(c Cleaner, loc *time.Location) *ExpiryControl {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpiryControl{Cleaner: c, Location: loc, Now: time.Now, After: time.After}
}

// NextMidnight is the first midnight in loc strictly after now.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Run blocks until ctx is done. It may be called again afterwards.
func (x *ExpiryControl) Run(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "task.expiry_control")

	for {
		now := x.Now()
		next := NextMidnight(now, x.Location)
		l.Debug("purge_scheduled", "at", next)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-x.After(next.Sub(now)):
			if n, err := x.RunOnce(ctx); err != nil {
				l.Error("purge_failed", "error", err)
			} else {
				l.Info("purge_completed", "deleted", n)
			}
		}
	}
}

// RunOnce purges immediately. A panic in the cleaner is returned as an
// error so the schedule keeps going.
func (x *ExpiryControl) RunOnce(ctx context.Context) (n int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purge panicked: %v", r)
		}
	}()
	return x.Cleaner.CleanExpired(ctx)
}
