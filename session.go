package settle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridex/settle/claims"
	"github.com/meridex/settle/delta"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/reserves"
)

// Executor is the session body. It receives the opaque payload passed to
// RunSession and performs engine operations; its return value is handed back
// to the RunSession caller unchanged.
type Executor interface {
	Execute(ctx context.Context, payload []byte) ([]byte, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, payload []byte) ([]byte, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

// snapshot captures all session-mutable state for rollback.
type snapshot struct {
	deltas   *delta.Ledger
	nonzero  delta.Counter
	claims   *claims.Ledger
	reserves *reserves.Tracker
	pools    map[pool.ID]*pool.Pool
}

func (e *Engine) takeSnapshot() snapshot {
	pools := make(map[pool.ID]*pool.Pool, len(e.pools))
	for k, v := range e.pools {
		pools[k] = v.Clone()
	}
	return snapshot{
		deltas:   e.deltas.Clone(),
		nonzero:  e.nonzero,
		claims:   e.claims.Clone(),
		reserves: e.reserves.Clone(),
		pools:    pools,
	}
}

func (e *Engine) restoreSnapshot(s snapshot) {
	e.deltas = s.deltas
	e.nonzero = s.nonzero
	e.claims = s.claims
	e.reserves = s.reserves
	e.pools = s.pools
}

// RunSession opens a session for caller, runs exec, and commits or rolls
// back. The session commits only when exec succeeds and every delta has
// returned to zero; any other outcome restores the pre-session state,
// including pools initialized mid-session.
//
// The first failed operation marks the session failed. The mark is sticky:
// the session rolls back at close even when the executor swallows the
// operation's error, so a failed operation's partial mutations can never be
// committed.
//
// Buffered Take withdrawals are flushed against the gateway at commit time,
// after the all-settled check passes. A flush failure rolls the session back
// like any other error.
//
// Sessions do not nest: opening one while another is active fails with
// ErrAlreadyUnlocked without disturbing the active session.
func (e *Engine) RunSession(ctx context.Context, caller id.AccountID, payload []byte, exec Executor) ([]byte, error) {
	if exec == nil {
		return nil, fmt.Errorf("settle: nil session executor")
	}

	e.mu.Lock()
	if e.unlocked {
		e.mu.Unlock()
		return nil, ErrAlreadyUnlocked
	}
	e.unlocked = true
	e.caller = caller
	e.session = id.NewSessionID()
	e.sessionErr = nil
	e.withdrawals = nil
	session := e.session
	e.mu.Unlock()

	log := e.logger.With(
		slog.String("session_id", session.String()),
		slog.String("caller", caller.String()),
	)
	log.Debug("session opened")

	snap := e.takeSnapshot()

	abort := func(cause error) ([]byte, error) {
		e.restoreSnapshot(snap)
		e.mu.Lock()
		e.unlocked = false
		e.caller = id.Nil
		e.sessionErr = nil
		e.withdrawals = nil
		e.mu.Unlock()
		log.Warn("session rolled back", slog.String("error", cause.Error()))
		return nil, cause
	}

	result, err := exec.Execute(ctx, payload)
	if err != nil {
		return abort(fmt.Errorf("settle: session execution: %w", err))
	}

	if cause := e.sessionFailure(); cause != nil {
		return abort(fmt.Errorf("settle: session had a failed operation: %w", cause))
	}

	if outstanding := e.nonzero.Count(); outstanding != 0 {
		return abort(fmt.Errorf("%w: %d outstanding entries", ErrCurrencyNotSettled, outstanding))
	}

	if err := e.flushWithdrawals(); err != nil {
		return abort(err)
	}

	e.mu.Lock()
	e.unlocked = false
	e.caller = id.Nil
	e.sequence++
	seq := e.sequence
	e.mu.Unlock()

	log.Debug("session committed", slog.Uint64("sequence", seq))
	e.checkpoint(ctx, seq)
	return result, nil
}

// flushWithdrawals releases the Take amounts buffered during the session.
func (e *Engine) flushWithdrawals() error {
	for _, w := range e.withdrawals {
		if err := e.gateway.Withdraw(w.recipient, w.asset, w.amount); err != nil {
			return fmt.Errorf("settle: flush withdrawal of %s %s to %s: %w",
				w.amount, w.asset, w.recipient, err)
		}
	}
	e.withdrawals = nil
	return nil
}

// checkpoint persists committed state after a successful session. Failures
// are logged, not returned: the in-memory state is already committed and a
// later session will checkpoint again.
func (e *Engine) checkpoint(ctx context.Context, seq uint64) {
	if e.store == nil {
		return
	}
	cp := e.exportCheckpoint(seq)
	if err := e.store.SaveCheckpoint(ctx, cp); err != nil {
		e.logger.Error("checkpoint save failed",
			slog.Uint64("sequence", seq),
			slog.String("error", err.Error()),
		)
	}
}

// sessionCaller returns the account the active session was opened for.
func (e *Engine) sessionCaller() id.AccountID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caller
}

// fail records err as the active session's failure and returns it. Only the
// first failure is kept. Outside a session it passes err through untouched.
func (e *Engine) fail(err error) error {
	if err == nil {
		return nil
	}
	e.mu.Lock()
	if e.unlocked && e.sessionErr == nil {
		e.sessionErr = err
	}
	e.mu.Unlock()
	return err
}

// sessionFailure returns the sticky failure recorded for the active session.
func (e *Engine) sessionFailure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionErr
}
