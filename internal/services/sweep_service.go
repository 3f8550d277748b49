package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apperrors "todo-items.com/todo-items/internal/errors"
	"todo-items.com/todo-items/internal/queue"
)

type SweepOptions struct {
	Interval         time.Duration
	LeaseTTL         time.Duration
	DanglingHoursMax int
}

// SweepService runs the periodic housekeeping over todo items: open items
// past their deadline become overdue, and long resolved or overdue items
// are archived.
type SweepService struct {
	items    *TodoItemService
	notifier Notifier
	lease    queue.Lease
	opts     SweepOptions
	logger   *log.Logger
	wg       sync.WaitGroup
}

func NewSweepService(
	items *TodoItemService,
	notifier Notifier,
	lease queue.Lease,
	opts SweepOptions,
	logger *log.Logger,
) *SweepService {
	return &SweepService{
		items:    items,
		notifier: notifier,
		lease:    lease,
		opts:     opts,
		logger:   logger,
	}
}

// UpdateStatusOverdue marks every open item past its deadline as overdue
// and returns how many were transitioned.
func (s *SweepService) UpdateStatusOverdue(ctx context.Context) (int, error) {
	items, err := s.items.ListOpenOverdue(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range items {
		item := &items[i]
		owner := item.User

		if err := s.items.MarkAsOverdue(ctx, item); err != nil {
			if skippable(err) {
				s.logger.Warn("skipping todo item in overdue sweep", "todo_item", item.ID, "err", err)
				continue
			}
			return processed, err
		}

		processed++
		s.notifier.TodoItemOverdue(item, owner)
	}

	return processed, nil
}

// MoveDanglingToArchive archives visible items left resolved or overdue for
// longer than the configured number of hours and returns how many moved.
func (s *SweepService) MoveDanglingToArchive(ctx context.Context) (int, error) {
	items, err := s.items.ListVisibleDangling(ctx, s.opts.DanglingHoursMax)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range items {
		item := &items[i]

		if err := s.items.MoveToArchive(ctx, item); err != nil {
			if skippable(err) {
				s.logger.Warn("skipping todo item in archive sweep", "todo_item", item.ID, "err", err)
				continue
			}
			return processed, err
		}

		processed++
	}

	return processed, nil
}

type Scan string

const (
	ScanOverdue Scan = "overdue"
	ScanArchive Scan = "archive"
	ScanAll     Scan = "all"
)

func (s Scan) Valid() bool {
	switch s {
	case ScanOverdue, ScanArchive, ScanAll:
		return true
	}
	return false
}

// RunOnce performs both scans under the sweep lease. It returns false when
// another holder had the lease and nothing was run.
func (s *SweepService) RunOnce(ctx context.Context) (bool, error) {
	return s.Run(ctx, ScanAll)
}

// Run performs the given scan under the sweep lease. It returns false when
// another holder had the lease and nothing was run.
func (s *SweepService) Run(ctx context.Context, scan Scan) (bool, error) {
	if !scan.Valid() {
		return false, fmt.Errorf("unknown sweep scan %q", scan)
	}

	acquired, err := s.lease.Acquire(ctx, s.opts.LeaseTTL)
	if err != nil {
		return false, err
	}
	if !acquired {
		s.logger.Debug("sweep lease held elsewhere, skipping", "scan", scan)
		return false, nil
	}
	defer func() {
		if err := s.lease.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release sweep lease", "err", err)
		}
	}()

	overdue, archived := 0, 0
	if scan == ScanOverdue || scan == ScanAll {
		if overdue, err = s.UpdateStatusOverdue(ctx); err != nil {
			return true, err
		}
	}
	if scan == ScanArchive || scan == ScanAll {
		if archived, err = s.MoveDanglingToArchive(ctx); err != nil {
			return true, err
		}
	}

	s.logger.Info("sweep finished", "scan", scan, "overdue", overdue, "archived", archived)
	return true, nil
}

// Start runs RunOnce every interval until ctx is done. Use Wait to block
// until the loop has returned.
func (s *SweepService) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *SweepService) Wait() {
	s.wg.Wait()
}

func (s *SweepService) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.logger.Info("sweep scheduler started", "interval", s.opts.Interval, "lease_ttl", s.opts.LeaseTTL)

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "err", err)
			}
		case <-ctx.Done():
			s.logger.Info("sweep scheduler stopped")
			return
		}
	}
}

func skippable(err error) bool {
	return apperrors.IsStateConflict(err) || apperrors.IsNotFound(err)
}
