// Package loader implements the single-flight pack loader. Starting a new
// load cancels any still-pending previous one, and a response belonging to a
// superseded load is discarded silently, so stale responses can never
// overwrite fresher state regardless of network completion order.
package loader

import (
	"context"
	"sync"

	"codeberg.org/snonux/lexicall/internal/api"
	"codeberg.org/snonux/lexicall/internal/pack"
)

// State is the loader's externally visible state
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchFunc loads the full entity for a target id
type FetchFunc func(ctx context.Context, target string) (*pack.VocabPack, error)

// Loader loads one logical pack at a time. Each Load call supersedes the
// previous one: the old request is cancelled and, should its response still
// arrive, the generation counter check drops it.
type Loader struct {
	mu     sync.Mutex
	fetch  FetchFunc
	state  State
	target string
	loaded *pack.VocabPack
	params *pack.GenerationParams
	errMsg string

	generation uint64
	cancel     context.CancelFunc
	closed     bool

	onChange func()
}

// New creates an idle loader around the given fetch function
func New(fetch FetchFunc) *Loader {
	return &Loader{fetch: fetch}
}

// SetOnChange sets a callback invoked, outside the loader's lock, after every
// state transition
func (l *Loader) SetOnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Load starts loading the given target, cancelling any in-flight load first.
// Completion is observed through State/Pack/Err, not a return value.
func (l *Loader) Load(ctx context.Context, target string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	// Invalidate the previous token before creating the new one.
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	generation := l.generation

	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = StateLoading
	l.target = target
	l.errMsg = ""
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn()
	}

	go l.run(fetchCtx, target, generation)
}

func (l *Loader) run(ctx context.Context, target string, generation uint64) {
	loaded, err := l.fetch(ctx, target)

	l.mu.Lock()
	// A newer Load superseded this request, or the owning context was torn
	// down: the result must not touch shared state.
	if l.closed || generation != l.generation {
		l.mu.Unlock()
		return
	}

	if err != nil {
		l.state = StateError
		l.errMsg = errorMessage(err, target)
		l.loaded = nil
		l.params = nil
	} else {
		l.state = StateReady
		l.loaded = loaded
		l.params = pack.ExtractParams(loaded)
	}
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// errorMessage distinguishes cancellation and timeouts from genuine server
// failures so the UI can tell the user something actionable
func errorMessage(err error, target string) string {
	if api.IsTimeout(err) {
		return "Loading " + target + " was cancelled or timed out — try again"
	}
	return "Failed to load " + target + ": " + err.Error()
}

// Cancel aborts the current in-flight load, if any, without starting a new
// one. Cancelling twice is harmless.
func (l *Loader) Cancel() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
}

// Close tears the loader down. After Close no state mutation is applied, even
// for responses that are already in flight.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()
}

// State returns the current state
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Target returns the target of the most recent Load call
func (l *Loader) Target() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

// Pack returns the loaded pack, or nil unless the state is ready
func (l *Loader) Pack() *pack.VocabPack {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return nil
	}
	return l.loaded
}

// Params returns the generation parameters derived from the loaded pack
func (l *Loader) Params() *pack.GenerationParams {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.params
}

// Err returns the error message when the state is error, otherwise ""
func (l *Loader) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateError {
		return ""
	}
	return l.errMsg
}
