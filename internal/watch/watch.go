// Package watch re-runs the allocation check on aligned ticks during work
// hours.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/asananas/internal/config"
	"github.com/christopherklint97/asananas/internal/logging"
)

// CheckFunc is one fetch, aggregate and alert pass.
type CheckFunc func(ctx context.Context, now time.Time) error

type Watcher struct {
	cfg     config.WatchConfig
	check   CheckFunc
	pidPath string
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg config.WatchConfig, pidPath string, check CheckFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		cfg:     cfg,
		check:   check,
		pidPath: pidPath,
		logger:  logger,
		now:     time.Now,
	}
}

func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	interval := time.Duration(w.cfg.IntervalMinutes) * time.Minute
	w.logger.Info("watcher started", "interval", interval, "work_start", w.cfg.WorkStart, "work_end", w.cfg.WorkEnd)

	if w.isWorkTime(w.now()) {
		w.runCheck(ctx)
	}

	for {
		if ctx.Err() != nil {
			w.logger.Info("watcher stopped")
			return nil
		}

		nextTick := nextAlignedTick(w.now(), interval)
		w.logger.Debug("next check scheduled", "at", nextTick.Format("15:04"))

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil
		case <-time.After(time.Until(nextTick)):
		}

		if !w.isWorkTime(w.now()) {
			continue
		}
		w.runCheck(ctx)
	}
}

func (w *Watcher) runCheck(ctx context.Context) {
	start := w.now()
	if err := w.check(ctx, start); err != nil {
		w.logger.Error("allocation check failed", "error", err)
		return
	}
	w.logger.Debug("allocation check done", "elapsed", time.Since(start))
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 60
	}

	nextMinute := ((now.Minute() / mins) + 1) * mins
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return next.Add(time.Duration(nextMinute) * time.Minute)
}

func (w *Watcher) isWorkTime(t time.Time) bool {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}

	isWorkDay := false
	for _, d := range w.cfg.WorkDays {
		if d == weekday {
			isWorkDay = true
			break
		}
	}
	if !isWorkDay {
		return false
	}

	startH, startM := parseClock(w.cfg.WorkStart, 9)
	endH, endM := parseClock(w.cfg.WorkEnd, 17)

	nowMins := t.Hour()*60 + t.Minute()
	return nowMins >= startH*60+startM && nowMins <= endH*60+endM
}

func parseClock(s string, fallbackHour int) (int, int) {
	if len(s) == 5 && s[2] == ':' {
		h, errH := strconv.Atoi(s[:2])
		m, errM := strconv.Atoi(s[3:])
		if errH == nil && errM == nil {
			return h, m
		}
	}
	return fallbackHour, 0
}

func (w *Watcher) writePID() error {
	return os.WriteFile(w.pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (w *Watcher) removePID() {
	os.Remove(w.pidPath)
}

// ReadPID returns the process ID recorded by a running watcher.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running watcher found")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}
	return pid, nil
}
