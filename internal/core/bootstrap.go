package core

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// Connector is a client that must be connected before use.
type Connector interface {
	Connect() error
}

// ConnectWithRetry connects client. With a zero retryAfter the first failure
// is returned as a *models.ConnectionError. Otherwise it waits retryAfter
// between attempts and keeps trying until it succeeds or ctx is done.
func ConnectWithRetry(ctx context.Context, client Connector, retryAfter time.Duration, log logrus.FieldLogger) error {
	for attempt := 1; ; attempt++ {
		err := client.Connect()
		if err == nil {
			if attempt > 1 {
				log.Infof("connected after %d attempts", attempt)
			}
			return nil
		}
		if retryAfter <= 0 {
			return &models.ConnectionError{Err: err}
		}

		log.WithError(err).Warnf("connection attempt %d failed, retrying in %s", attempt, retryAfter)
		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
