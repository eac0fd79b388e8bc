package usecase

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"social-hub/domain/errs"
	"social-hub/infrastructure/logger"
)

// Undo entry states. An entry leaves pending exactly once.
const (
	undoStatePending  = "pending"
	undoStateUndone   = "undone"
	undoStateExecuted = "executed"
	undoStateCleared  = "cleared"
)

// UndoAction is a deferred, user-reversible action. Execute commits it when
// the window closes; Undo rolls it back when the user cancels in time.
type UndoAction struct {
	Kind    string
	Execute func() error
	Undo    func() error
}

type undoEntry struct {
	id        string
	action    UndoAction
	state     string
	expiresAt time.Time
	timer     *time.Timer
}

// UndoEntryInfo is the read-only view of a pending entry.
type UndoEntryInfo struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type IUndoLedger interface {
	// Push registers an action and starts its expiry timer. ttl <= 0 uses the
	// ledger default.
	Push(action UndoAction, ttl time.Duration) string
	// Undo cancels a pending entry and runs its Undo hook. Returns ErrNotFound
	// when the entry is unknown or already resolved.
	Undo(id string) error
	// Clear drops a pending entry without running Execute or Undo.
	Clear(id string) error
	// List returns the pending entries, newest last.
	List() []UndoEntryInfo
	// Stop commits every pending entry immediately. Used at shutdown so
	// deferred work is not lost.
	Stop()
}

// UndoLedger holds pending reversible actions in memory. Each entry resolves
// exactly once: expiry executes, Undo rolls back, Clear discards.
type UndoLedger struct {
	mu         sync.Mutex
	entries    map[string]*undoEntry
	seq        atomic.Int64
	defaultTTL time.Duration
}

func NewUndoLedger(defaultTTL time.Duration) *UndoLedger {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Second
	}
	return &UndoLedger{
		entries:    make(map[string]*undoEntry),
		defaultTTL: defaultTTL,
	}
}

func (l *UndoLedger) Push(action UndoAction, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	id := fmt.Sprintf("undo-%d-%d", time.Now().UnixMilli(), l.seq.Add(1))
	entry := &undoEntry{id: id, action: action, state: undoStatePending, expiresAt: time.Now().Add(ttl)}

	l.mu.Lock()
	l.entries[id] = entry
	entry.timer = time.AfterFunc(ttl, func() { l.expire(id) })
	l.mu.Unlock()
	return id
}

// resolve transitions the entry out of pending under the lock and reports
// whether this caller won the transition.
func (l *UndoLedger) resolve(id, next string) (*undoEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok || entry.state != undoStatePending {
		return nil, false
	}
	entry.state = next
	entry.timer.Stop()
	delete(l.entries, id)
	return entry, true
}

func (l *UndoLedger) expire(id string) {
	entry, won := l.resolve(id, undoStateExecuted)
	if !won {
		return
	}
	if entry.action.Execute == nil {
		return
	}
	if err := entry.action.Execute(); err != nil {
		logger.GetLogger().
			WithField("id", id).
			WithField("kind", entry.action.Kind).
			WithField("error", err).
			Error("Error while executing deferred action.")
	}
}

func (l *UndoLedger) Undo(id string) error {
	entry, won := l.resolve(id, undoStateUndone)
	if !won {
		return fmt.Errorf("%w: undo entry %s", errs.ErrNotFound, id)
	}
	if entry.action.Undo == nil {
		return nil
	}
	return entry.action.Undo()
}

func (l *UndoLedger) Clear(id string) error {
	if _, won := l.resolve(id, undoStateCleared); !won {
		return fmt.Errorf("%w: undo entry %s", errs.ErrNotFound, id)
	}
	return nil
}

func (l *UndoLedger) List() []UndoEntryInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]UndoEntryInfo, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, UndoEntryInfo{ID: entry.id, Kind: entry.action.Kind, ExpiresAt: entry.expiresAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}

func (l *UndoLedger) Stop() {
	l.mu.Lock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	l.mu.Unlock()
	for _, id := range ids {
		l.expire(id)
	}
}
