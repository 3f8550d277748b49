package services

import (
	"context"
	"testing"
	"time"

	"todo-items.com/todo-items/internal/constants"
	model "todo-items.com/todo-items/internal/models"
	"todo-items.com/todo-items/internal/queue"
)

func newSweepService(t *testing.T) (*SweepService, *TodoItemService, *fakeNotifier, *model.User) {
	items, db := newTodoItemService(t)
	owner := createUser(t, db, "johnny")
	notifier := &fakeNotifier{}

	sweep := NewSweepService(items, notifier, queue.NewLocalLease(), SweepOptions{
		Interval:         time.Minute,
		LeaseTTL:         40 * time.Second,
		DanglingHoursMax: 24,
	}, testLogger())

	return sweep, items, notifier, owner
}

func TestSweepService_UpdateStatusOverdue(t *testing.T) {
	sweep, items, notifier, owner := newSweepService(t)
	ctx := context.Background()

	past := createTodoItem(t, items, owner, "past deadline", timePtr(testNow.Add(-time.Hour)))
	future := createTodoItem(t, items, owner, "future deadline", timePtr(testNow.Add(time.Hour)))
	noDeadline := createTodoItem(t, items, owner, "no deadline", nil)
	resolved := createTodoItem(t, items, owner, "resolved", timePtr(testNow.Add(-time.Hour)))
	if err := items.Resolve(ctx, resolved); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	processed, err := sweep.UpdateStatusOverdue(ctx)
	if err != nil {
		t.Fatalf("overdue sweep failed: %v", err)
	}
	if processed != 1 {
		t.Errorf("expected 1 item processed, got %d", processed)
	}

	expected := map[uint]constants.TodoItemStatus{
		past.ID:       constants.StatusOverdue,
		future.ID:     constants.StatusOpen,
		noDeadline.ID: constants.StatusOpen,
		resolved.ID:   constants.StatusResolved,
	}
	for id, want := range expected {
		got := refetch(t, items, &model.TodoItem{ID: id})
		if got.Status != want {
			t.Errorf("item %d: expected status %s, got %s", id, want, got.Status)
		}
	}

	if len(notifier.overdue) != 1 || notifier.overdue[0] != past.ID {
		t.Errorf("expected one overdue notification for item %d, got %v", past.ID, notifier.overdue)
	}

	processed, err = sweep.UpdateStatusOverdue(ctx)
	if err != nil {
		t.Fatalf("second overdue sweep failed: %v", err)
	}
	if processed != 0 {
		t.Errorf("expected second sweep to process nothing, got %d", processed)
	}
	if got := refetch(t, items, past); got.Version != 2 {
		t.Errorf("expected no further writes, got version %d", got.Version)
	}
}

func TestSweepService_UpdateStatusOverdueSkipsConflicts(t *testing.T) {
	sweep, items, notifier, owner := newSweepService(t)
	ctx := context.Background()

	first := createTodoItem(t, items, owner, "first", timePtr(testNow.Add(-2*time.Hour)))
	second := createTodoItem(t, items, owner, "second", timePtr(testNow.Add(-time.Hour)))

	// The owner resolves the second item after the sweep selected it.
	notifier.onOverdue = func(item *model.TodoItem) {
		if item.ID != first.ID {
			return
		}
		if err := items.Resolve(ctx, second); err != nil {
			t.Errorf("failed to resolve concurrently: %v", err)
		}
	}

	processed, err := sweep.UpdateStatusOverdue(ctx)
	if err != nil {
		t.Fatalf("expected conflicts to be skipped, got %v", err)
	}
	if processed != 1 {
		t.Errorf("expected 1 item processed, got %d", processed)
	}
	if got := refetch(t, items, second); got.Status != constants.StatusResolved {
		t.Errorf("expected concurrently resolved item to stay resolved, got %s", got.Status)
	}
}

func TestSweepService_MoveDanglingToArchive(t *testing.T) {
	sweep, items, _, owner := newSweepService(t)
	ctx := context.Background()

	oldResolved := createTodoItem(t, items, owner, "resolved long ago", nil)
	items.now = func() time.Time { return testNow.Add(-30 * time.Hour) }
	if err := items.Resolve(ctx, oldResolved); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	items.now = func() time.Time { return testNow }

	recentResolved := createTodoItem(t, items, owner, "resolved recently", nil)
	if err := items.Resolve(ctx, recentResolved); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	oldOverdue := createTodoItem(t, items, owner, "overdue long ago", timePtr(testNow.Add(-48*time.Hour)))
	recentOverdue := createTodoItem(t, items, owner, "overdue recently", timePtr(testNow.Add(-time.Hour)))
	for _, item := range []*model.TodoItem{oldOverdue, recentOverdue} {
		if err := items.MarkAsOverdue(ctx, item); err != nil {
			t.Fatalf("failed to mark overdue: %v", err)
		}
	}

	alreadyArchived := createTodoItem(t, items, owner, "archived", nil)
	if err := items.Resolve(ctx, alreadyArchived); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if err := items.MoveToArchive(ctx, alreadyArchived); err != nil {
		t.Fatalf("failed to archive: %v", err)
	}

	openOld := createTodoItem(t, items, owner, "open with old deadline", timePtr(testNow.Add(-48*time.Hour)))

	processed, err := sweep.MoveDanglingToArchive(ctx)
	if err != nil {
		t.Fatalf("archive sweep failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("expected 2 items processed, got %d", processed)
	}

	expected := map[uint]constants.TodoItemVisibility{
		oldResolved.ID:     constants.VisibilityArchived,
		oldOverdue.ID:      constants.VisibilityArchived,
		recentResolved.ID:  constants.VisibilityVisible,
		recentOverdue.ID:   constants.VisibilityVisible,
		alreadyArchived.ID: constants.VisibilityArchived,
		openOld.ID:         constants.VisibilityVisible,
	}
	for id, want := range expected {
		got := refetch(t, items, &model.TodoItem{ID: id})
		if got.Visibility != want {
			t.Errorf("item %d: expected visibility %s, got %s", id, want, got.Visibility)
		}
	}

	processed, err = sweep.MoveDanglingToArchive(ctx)
	if err != nil {
		t.Fatalf("second archive sweep failed: %v", err)
	}
	if processed != 0 {
		t.Errorf("expected second sweep to process nothing, got %d", processed)
	}
}

func TestSweepService_RunOnceRespectsLease(t *testing.T) {
	sweep, items, _, owner := newSweepService(t)
	ctx := context.Background()
	item := createTodoItem(t, items, owner, "past deadline", timePtr(testNow.Add(-time.Hour)))

	if ok, _ := sweep.lease.Acquire(ctx, time.Minute); !ok {
		t.Fatal("failed to take the lease")
	}

	ran, err := sweep.RunOnce(ctx)
	if err != nil || ran {
		t.Fatalf("expected tick to be skipped, got %v, %v", ran, err)
	}
	if got := refetch(t, items, item); got.Status != constants.StatusOpen {
		t.Errorf("expected item untouched while lease is held, got %s", got.Status)
	}

	if err := sweep.lease.Release(ctx); err != nil {
		t.Fatalf("failed to release: %v", err)
	}

	ran, err = sweep.RunOnce(ctx)
	if err != nil || !ran {
		t.Fatalf("expected tick to run, got %v, %v", ran, err)
	}
	if got := refetch(t, items, item); got.Status != constants.StatusOverdue {
		t.Errorf("expected item to become overdue, got %s", got.Status)
	}

	if ok, _ := sweep.lease.Acquire(ctx, time.Minute); !ok {
		t.Error("expected lease to be released after the run")
	}
}

func TestSweepService_StartStopsWithContext(t *testing.T) {
	sweep, items, _, owner := newSweepService(t)
	sweep.opts.Interval = 10 * time.Millisecond
	item := createTodoItem(t, items, owner, "past deadline", timePtr(testNow.Add(-time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	sweep.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	var status constants.TodoItemStatus
	for time.Now().Before(deadline) {
		status = refetch(t, items, item).Status
		if status == constants.StatusOverdue {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	sweep.Wait()

	if status != constants.StatusOverdue {
		t.Errorf("expected scheduler to mark item overdue, got %s", status)
	}
}

func TestSweepService_RunSingleScanRespectsLease(t *testing.T) {
	sweep, items, _, owner := newSweepService(t)
	ctx := context.Background()
	item := createTodoItem(t, items, owner, "past deadline", timePtr(testNow.Add(-time.Hour)))

	if ok, _ := sweep.lease.Acquire(ctx, time.Minute); !ok {
		t.Fatal("failed to take the lease")
	}

	ran, err := sweep.Run(ctx, ScanOverdue)
	if err != nil || ran {
		t.Fatalf("expected overdue scan to be skipped, got %v, %v", ran, err)
	}
	if got := refetch(t, items, item); got.Status != constants.StatusOpen {
		t.Errorf("expected item untouched while lease is held, got %s", got.Status)
	}

	if err := sweep.lease.Release(ctx); err != nil {
		t.Fatalf("failed to release: %v", err)
	}

	ran, err = sweep.Run(ctx, ScanArchive)
	if err != nil || !ran {
		t.Fatalf("expected archive scan to run, got %v, %v", ran, err)
	}
	if got := refetch(t, items, item); got.Status != constants.StatusOpen {
		t.Errorf("expected archive scan to leave status alone, got %s", got.Status)
	}

	ran, err = sweep.Run(ctx, ScanOverdue)
	if err != nil || !ran {
		t.Fatalf("expected overdue scan to run, got %v, %v", ran, err)
	}
	if got := refetch(t, items, item); got.Status != constants.StatusOverdue {
		t.Errorf("expected item to become overdue, got %s", got.Status)
	}

	if _, err := sweep.Run(ctx, Scan("everything")); err == nil {
		t.Error("expected an unknown scan to be rejected")
	}
}
