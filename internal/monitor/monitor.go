// Package monitor periodically checks the board and reports tasks as they
// become overdue.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/model"
)

const DefaultSchedule = "@every 5m"

// SystemSession is the identity the monitor reads the board with.
var SystemSession = auth.Session{UserID: "system", FullName: "Overdue monitor", Role: model.RoleManager}

type Board interface {
	Board(ctx context.Context, session auth.Session, now time.Time) (checklist.Board, error)
	Now() time.Time
}

// Monitor reports each overdue task at most once per day.
type Monitor struct {
	board    Board
	schedule string
	notify   func(checklist.Item)
	timeout  time.Duration

	mu       sync.Mutex
	notified map[string]string
	cron     *cron.Cron
}

type Option func(*Monitor)

// WithNotify replaces the default log line written for each newly overdue task.
func WithNotify(fn func(checklist.Item)) Option {
	return func(m *Monitor) {
		if fn != nil {
			m.notify = fn
		}
	}
}

func New(board Board, schedule string, opts ...Option) *Monitor {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	m := &Monitor{
		board:    board,
		schedule: schedule,
		notify:   logOverdue,
		timeout:  30 * time.Second,
		notified: make(map[string]string),
		cron:     cron.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start schedules the check and starts the scheduler.
func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, m.run); err != nil {
		return fmt.Errorf("schedule overdue check %q: %w", m.schedule, err)
	}
	m.cron.Start()
	log.Printf("Overdue monitor started (%s)", m.schedule)
	return nil
}

// Stop waits for a running check to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	log.Println("Overdue monitor stopped")
}

func (m *Monitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if _, err := m.Check(ctx); err != nil {
		log.Printf("overdue check failed: %v", err)
	}
}

// Check reports tasks that are overdue now and were not reported earlier
// today, and returns them.
func (m *Monitor) Check(ctx context.Context) ([]checklist.Item, error) {
	now := m.board.Now()
	board, err := m.board.Board(ctx, SystemSession, now)
	if err != nil {
		return nil, err
	}

	day := board.Date.Format("2006-01-02")

	m.mu.Lock()
	var fresh []checklist.Item
	for _, item := range board.Overdue {
		if m.notified[item.Task.ID] == day {
			continue
		}
		m.notified[item.Task.ID] = day
		fresh = append(fresh, item)
	}
	for taskID, seen := range m.notified {
		if seen != day {
			delete(m.notified, taskID)
		}
	}
	m.mu.Unlock()

	for _, item := range fresh {
		m.notify(item)
	}
	return fresh, nil
}

func logOverdue(item checklist.Item) {
	log.Printf("overdue: %q was due at %s (%s)", item.Task.Title, item.ScheduledAt.Format("15:04"), item.Task.AssignedRole)
}
