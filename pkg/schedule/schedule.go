// Package schedule runs recurring background tasks.
//
//	s := schedule.New()
//	s.Every(time.Minute).Name("stats:warm").WithoutOverlapping().Run(warmStats)
//	s.Cron("0 3 * * *").Name("vouchers:expire").Run(expireVouchers)
//	go s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds registered entries and dispatches them from Start.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
	tick    time.Duration
}

// New returns an empty scheduler that checks entries every second.
func New() *Scheduler { return &Scheduler{tick: time.Second} }

// Builder configures an entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every schedules a task at a fixed interval, first run on the first tick.
func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

// Cron schedules a task with a 5-field expression (minute hour dom month
// dow). Each field is *, n, */step, a-b or a comma list of those. The task
// runs at most once per matching minute.
func (s *Scheduler) Cron(expr string) *Builder {
	return &Builder{s: s, e: &entry{cronExpr: expr}}
}

// Name sets the identifier used in logs and List.
func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// WithoutOverlapping skips a run while the previous one is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

// Run registers task. It returns an error for an invalid cron expression.
func (b *Builder) Run(task Task) error {
	if b.e.cronExpr != "" {
		if err := validateCron(b.e.cronExpr); err != nil {
			return err
		}
	} else if b.e.interval <= 0 {
		return fmt.Errorf("schedule: interval must be positive")
	}
	b.e.task = task

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
	return nil
}

// Start dispatches due entries until ctx is cancelled, then waits for
// running tasks.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("schedule: started", "entries", len(s.List()))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()

			for _, e := range current {
				if e.due(now) {
					s.dispatch(ctx, e, now)
				}
			}
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cronExpr != "" {
		if !e.lastRun.IsZero() && e.lastRun.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			return false
		}
		return matchCron(e.cronExpr, now)
	}
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping run", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", fmt.Sprint(r))
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Warn("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task done", "id", e.id, "duration", time.Since(start).String())
	}()
}

// RunNow executes the named entry once, synchronously.
func (s *Scheduler) RunNow(ctx context.Context, id string) error {
	s.mu.Lock()
	var found *entry
	for _, e := range s.entries {
		if e.id == id {
			found = e
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return fmt.Errorf("schedule: no task named %q", id)
	}
	return found.task(ctx)
}

// List describes the registered entries as "id [frequency]".
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s [%s]", e.id, freq))
	}
	return out
}

var cronBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

func validateCron(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("schedule: cron %q needs 5 fields", expr)
	}
	for i, f := range fields {
		for _, part := range strings.Split(f, ",") {
			if _, err := matchPart(part, cronBounds[i][0], cronBounds[i]); err != nil {
				return fmt.Errorf("schedule: cron %q: %w", expr, err)
			}
		}
	}
	return nil
}

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	vals := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, vals[i], cronBounds[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int, bounds [2]int) bool {
	for _, part := range strings.Split(field, ",") {
		if ok, err := matchPart(part, val, bounds); err == nil && ok {
			return true
		}
	}
	return false
}

func matchPart(part string, val int, bounds [2]int) (bool, error) {
	switch {
	case part == "*":
		return true, nil
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		if err != nil || step <= 0 {
			return false, fmt.Errorf("bad step %q", part)
		}
		return (val-bounds[0])%step == 0, nil
	case strings.Contains(part, "-"):
		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			return false, fmt.Errorf("bad range %q", part)
		}
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || a > b || a < bounds[0] || b > bounds[1] {
			return false, fmt.Errorf("bad range %q", part)
		}
		return val >= a && val <= b, nil
	default:
		n, err := strconv.Atoi(part)
		if err != nil || n < bounds[0] || n > bounds[1] {
			return false, fmt.Errorf("bad value %q", part)
		}
		return n == val, nil
	}
}
