package usecase_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub/domain/errs"
	"social-hub/usecase"
)

func TestUndoLedger_UndoBeforeExpiry(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)
	defer ledger.Stop()

	var executed, undone atomic.Int32
	id := ledger.Push(usecase.UndoAction{
		Kind:    "disconnect_account",
		Execute: func() error { executed.Add(1); return nil },
		Undo:    func() error { undone.Add(1); return nil },
	}, 50*time.Millisecond)

	require.NoError(t, ledger.Undo(id))
	assert.Equal(t, int32(1), undone.Load())

	// the timer must not fire after the undo
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), executed.Load())

	// the entry is resolved; a second undo finds nothing
	assert.ErrorIs(t, ledger.Undo(id), errs.ErrNotFound)
}

func TestUndoLedger_ExpiryExecutesOnce(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)
	defer ledger.Stop()

	var executed atomic.Int32
	done := make(chan struct{})
	id := ledger.Push(usecase.UndoAction{
		Kind:    "disconnect_account",
		Execute: func() error { executed.Add(1); close(done); return nil },
	}, 20*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred execute never fired")
	}
	assert.Equal(t, int32(1), executed.Load())

	// once executed, both undo and clear miss
	assert.ErrorIs(t, ledger.Undo(id), errs.ErrNotFound)
	assert.ErrorIs(t, ledger.Clear(id), errs.ErrNotFound)
}

func TestUndoLedger_ConcurrentUndoResolvesOnce(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)
	defer ledger.Stop()

	var undone atomic.Int32
	id := ledger.Push(usecase.UndoAction{
		Kind: "disconnect_account",
		Undo: func() error { undone.Add(1); return nil },
	}, time.Minute)

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Undo(id); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(1), undone.Load())
}

func TestUndoLedger_ClearInvokesNothing(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)
	defer ledger.Stop()

	var executed, undone atomic.Int32
	id := ledger.Push(usecase.UndoAction{
		Kind:    "disconnect_account",
		Execute: func() error { executed.Add(1); return nil },
		Undo:    func() error { undone.Add(1); return nil },
	}, 20*time.Millisecond)

	require.NoError(t, ledger.Clear(id))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), executed.Load())
	assert.Equal(t, int32(0), undone.Load())
}

func TestUndoLedger_DefaultTTL(t *testing.T) {
	ledger := usecase.NewUndoLedger(30 * time.Millisecond)
	defer ledger.Stop()

	done := make(chan struct{})
	ledger.Push(usecase.UndoAction{
		Kind:    "disconnect_account",
		Execute: func() error { close(done); return nil },
	}, 0)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("default TTL did not trigger execute")
	}
}

func TestUndoLedger_ListPending(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)
	defer ledger.Stop()

	first := ledger.Push(usecase.UndoAction{Kind: "disconnect_account"}, time.Minute)
	second := ledger.Push(usecase.UndoAction{Kind: "delete_item"}, 2*time.Minute)

	pending := ledger.List()
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, second, pending[1].ID)
	assert.Equal(t, "delete_item", pending[1].Kind)

	require.NoError(t, ledger.Clear(first))
	assert.Len(t, ledger.List(), 1)
}

func TestUndoLedger_StopCommitsPending(t *testing.T) {
	ledger := usecase.NewUndoLedger(time.Minute)

	var executed atomic.Int32
	ledger.Push(usecase.UndoAction{
		Kind:    "disconnect_account",
		Execute: func() error { executed.Add(1); return nil },
	}, time.Hour)

	ledger.Stop()
	assert.Equal(t, int32(1), executed.Load())
}
