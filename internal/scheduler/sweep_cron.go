package scheduler

import (
	"context"
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 2 * time.Minute

// StartSweepCron runs the sweeper on the given cron schedule. The caller
// stops the returned scheduler on shutdown.
func StartSweepCron(schedule string, sweeper *jobs.Sweeper) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := sweeper.RunSweep(ctx); err != nil {
			logrus.WithError(err).Error("Wish sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("schedule", schedule).Info("Sweep cron started")
	return c, nil
}
