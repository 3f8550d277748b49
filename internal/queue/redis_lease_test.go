package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
)

func isSet(key, ttl string, token *string) gomock.Matcher {
	return mock.MatchFn(func(cmd []string) bool {
		if len(cmd) != 6 || cmd[0] != "SET" || cmd[1] != key || cmd[3] != "NX" || cmd[4] != "PX" || cmd[5] != ttl {
			return false
		}
		if token != nil {
			*token = cmd[2]
		}
		return true
	}, "SET "+key+" <token> NX PX "+ttl)
}

func isRelease(key string, token *string) gomock.Matcher {
	return mock.MatchFn(func(cmd []string) bool {
		return len(cmd) == 5 &&
			(cmd[0] == "EVALSHA" || cmd[0] == "EVAL") &&
			cmd[2] == "1" &&
			cmd[3] == key &&
			cmd[4] == *token
	}, "compare-and-delete of "+key)
}

func TestRedisLease_AcquireAndRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	ctx := context.Background()
	lease := NewRedisLease(client, "todo_items:sweep_lease")

	var token string
	client.EXPECT().
		Do(gomock.Any(), isSet("todo_items:sweep_lease", "40000", &token)).
		Return(mock.Result(mock.RedisString("OK")))
	client.EXPECT().
		Do(gomock.Any(), isRelease("todo_items:sweep_lease", &token)).
		Return(mock.Result(mock.RedisInt64(1)))

	ok, err := lease.Acquire(ctx, 40*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected lease to be acquired, got %v, %v", ok, err)
	}
	if token == "" {
		t.Fatal("expected a holder token to be written")
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("failed to release: %v", err)
	}

	// Nothing is held any more, so no command is sent.
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("unexpected error on second release: %v", err)
	}
}

func TestRedisLease_HeldElsewhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	ctx := context.Background()
	lease := NewRedisLease(client, "todo_items:sweep_lease")

	client.EXPECT().
		Do(gomock.Any(), isSet("todo_items:sweep_lease", "40000", nil)).
		Return(mock.Result(mock.RedisNil()))

	ok, err := lease.Acquire(ctx, 40*time.Second)
	if err != nil || ok {
		t.Fatalf("expected lease to be refused without error, got %v, %v", ok, err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("expected release without a held lease to be a no-op, got %v", err)
	}
}

func TestRedisLease_AcquireError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	lease := NewRedisLease(client, "todo_items:sweep_lease")
	errDown := errors.New("connection refused")

	client.EXPECT().
		Do(gomock.Any(), isSet("todo_items:sweep_lease", "1000", nil)).
		Return(mock.ErrorResult(errDown))

	ok, err := lease.Acquire(context.Background(), time.Second)
	if ok || !errors.Is(err, errDown) {
		t.Fatalf("expected the redis error, got %v, %v", ok, err)
	}
}
