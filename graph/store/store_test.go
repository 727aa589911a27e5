package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type blobState struct {
	Phase string   `json:"phase"`
	Log   []string `json:"log"`
}

// storeContract exercises the Store interface against any backend.
func storeContract(t *testing.T, st Store[blobState]) {
	t.Helper()
	ctx := context.Background()

	t.Run("load latest of unknown run", func(t *testing.T) {
		_, _, err := st.LoadLatest(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and load latest", func(t *testing.T) {
		if err := st.SaveStep(ctx, "run-1", 1, "research", blobState{Phase: "one", Log: []string{"a"}}); err != nil {
			t.Fatalf("SaveStep: %v", err)
		}
		if err := st.SaveStep(ctx, "run-1", 2, "outline", blobState{Phase: "two", Log: []string{"a", "b"}}); err != nil {
			t.Fatalf("SaveStep: %v", err)
		}

		state, step, err := st.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest: %v", err)
		}
		if step != 2 || state.Phase != "two" || len(state.Log) != 2 {
			t.Errorf("got step=%d state=%+v", step, state)
		}
	})

	t.Run("checkpoint roundtrip", func(t *testing.T) {
		if err := st.SaveCheckpoint(ctx, "cp-1", blobState{Phase: "saved"}, 7); err != nil {
			t.Fatalf("SaveCheckpoint: %v", err)
		}
		state, step, err := st.LoadCheckpoint(ctx, "cp-1")
		if err != nil {
			t.Fatalf("LoadCheckpoint: %v", err)
		}
		if step != 7 || state.Phase != "saved" {
			t.Errorf("got step=%d state=%+v", step, state)
		}

		if _, _, err := st.LoadCheckpoint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("checkpoint overwrite", func(t *testing.T) {
		if err := st.SaveCheckpoint(ctx, "cp-2", blobState{Phase: "first"}, 1); err != nil {
			t.Fatal(err)
		}
		if err := st.SaveCheckpoint(ctx, "cp-2", blobState{Phase: "second"}, 2); err != nil {
			t.Fatal(err)
		}
		state, step, err := st.LoadCheckpoint(ctx, "cp-2")
		if err != nil {
			t.Fatal(err)
		}
		if step != 2 || state.Phase != "second" {
			t.Errorf("got step=%d state=%+v", step, state)
		}
	})
}

func TestMemStore(t *testing.T) {
	storeContract(t, NewMemStore[blobState]())
}

func TestSQLiteStore(t *testing.T) {
	st, err := NewSQLiteStore[blobState](filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	storeContract(t, st)

	t.Run("closed store rejects operations", func(t *testing.T) {
		closed, err := NewSQLiteStore[blobState](filepath.Join(t.TempDir(), "closed.db"))
		if err != nil {
			t.Fatal(err)
		}
		if err := closed.Close(); err != nil {
			t.Fatal(err)
		}
		if err := closed.SaveStep(context.Background(), "r", 1, "n", blobState{}); err == nil {
			t.Error("expected error after Close")
		}
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st, err := NewRedisStore[blobState](client, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	storeContract(t, st)

	t.Run("step records expire", func(t *testing.T) {
		ctx := context.Background()
		if err := st.SaveStep(ctx, "run-ttl", 1, "n", blobState{Phase: "x"}); err != nil {
			t.Fatal(err)
		}
		mr.FastForward(2 * time.Hour)
		if _, _, err := st.LoadLatest(ctx, "run-ttl"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound after TTL", err)
		}
	})

	t.Run("checkpoints survive the TTL", func(t *testing.T) {
		ctx := context.Background()
		if err := st.SaveCheckpoint(ctx, "cp-keep", blobState{Phase: "keep"}, 3); err != nil {
			t.Fatal(err)
		}
		mr.FastForward(48 * time.Hour)
		state, _, err := st.LoadCheckpoint(ctx, "cp-keep")
		if err != nil {
			t.Fatalf("LoadCheckpoint: %v", err)
		}
		if state.Phase != "keep" {
			t.Errorf("state = %+v", state)
		}
	})
}
