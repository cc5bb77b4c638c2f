package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/logging"
)

const appName = "asananas"

type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the OS notification center.
type Desktop struct{}

func (Desktop) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// StateStore remembers which alerts were already sent.
type StateStore interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

// Alerter notifies about people booked above Threshold in a week. Each person
// is alerted once per week and again only when their total changes.
type Alerter struct {
	Notifier  Notifier
	State     StateStore
	Threshold float64
	Logger    *slog.Logger
}

func stateKey(week, person string) string {
	return "alert:" + week + ":" + person
}

// Check sends the pending alerts for week and returns the people alerted.
func (a *Alerter) Check(buckets []allocation.Bucket, week string) ([]allocation.Load, error) {
	logger := a.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var sent []allocation.Load
	for _, l := range allocation.Overallocated(buckets, week, a.Threshold) {
		key := stateKey(week, l.Person)
		value := fmt.Sprintf("%.0f", l.Utilization*100)

		if a.State != nil {
			prev, err := a.State.GetState(key)
			if err != nil {
				return sent, fmt.Errorf("reading alert state: %w", err)
			}
			if prev == value {
				logger.Debug("alert already sent", "person", l.Person, "week", week)
				continue
			}
		}

		title := fmt.Sprintf("%s: %s over-allocated", appName, l.Person)
		msg := fmt.Sprintf("%s is at %s%% in %s (%s)", l.Person, value, week, strings.Join(l.Projects, ", "))
		if err := a.Notifier.Notify(title, msg); err != nil {
			logger.Warn("sending notification failed", "person", l.Person, "error", err)
			continue
		}
		logger.Info("over-allocation alert sent", "person", l.Person, "week", week, "utilization", l.Utilization)

		if a.State != nil {
			if err := a.State.SetState(key, value); err != nil {
				return sent, fmt.Errorf("saving alert state: %w", err)
			}
		}
		sent = append(sent, l)
	}
	return sent, nil
}
