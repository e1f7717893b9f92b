// Package store owns the application state: the todo collection, the active
// status filter, the in-flight placeholder, the pending-operation set and the
// error banner. All mutation funnels through its action methods; views read
// snapshots and register listeners, never the state itself.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/todotui/internal/api"
	"github.com/idilsaglam/todotui/internal/model"
)

// User-facing failure messages. One message per action type; timeouts, bad
// statuses and decode failures all collapse to the same text.
const (
	MsgAddFailed    = "Unable to add a todo"
	MsgDeleteFailed = "Unable to delete a todo"
	MsgUpdateFailed = "Unable to update a todo"
)

// DismissDelay is how long an error banner stays up before clearing itself.
const DismissDelay = 3 * time.Second

// Client is the remote collection surface the store drives. *api.Client
// implements it; tests substitute fakes.
type Client interface {
	UserID() int
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, todo model.Todo) (model.Todo, error)
	Update(ctx context.Context, id int, patch api.Patch) error
	Delete(ctx context.Context, id int) error
}

// Snapshot is an immutable view of the state plus the values derived from it.
type Snapshot struct {
	Todos       []model.Todo
	Visible     []model.Todo // Todos narrowed by Filter
	Filter      model.StatusFilter
	Placeholder *model.Todo // non-nil while a create is in flight
	Pending     map[int]bool
	Err         string

	ActiveCount       int
	CompletedCount    int
	HasTodos          bool
	CanClearCompleted bool
	AllCompleted      bool
}

// Options tune store behavior.
type Options struct {
	// DismissAfter overrides the error auto-dismiss delay. Zero means
	// DismissDelay. Tests shorten it.
	DismissAfter time.Duration
}

// Store is the single owner of mutable application state.
type Store struct {
	client       Client
	dismissAfter time.Duration

	mu        sync.Mutex
	todos     []model.Todo
	filter    model.StatusFilter
	temp      *model.Todo
	pending   map[int]struct{}
	errMsg    string
	errGen    int // invalidates stale dismiss timers
	errTimer  *time.Timer
	listeners map[int]func(Snapshot)
	nextSub   int
}

// New builds a store over client. No network traffic happens until the first
// action runs.
func New(client Client, opt Options) *Store {
	d := opt.DismissAfter
	if d <= 0 {
		d = DismissDelay
	}
	return &Store{
		client:       client,
		dismissAfter: d,
		pending:      make(map[int]struct{}),
		listeners:    make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to run after every state change with the snapshot
// that change produced. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state and derived values.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	todos := make([]model.Todo, len(s.todos))
	copy(todos, s.todos)
	pending := make(map[int]bool, len(s.pending))
	for id := range s.pending {
		pending[id] = true
	}
	var placeholder *model.Todo
	if s.temp != nil {
		t := *s.temp
		placeholder = &t
	}
	active, completed := model.Stats(todos)
	return Snapshot{
		Todos:             todos,
		Visible:           model.Filter(todos, s.filter),
		Filter:            s.filter,
		Placeholder:       placeholder,
		Pending:           pending,
		Err:               s.errMsg,
		ActiveCount:       active,
		CompletedCount:    completed,
		HasTodos:          len(todos) > 0,
		CanClearCompleted: completed > 0,
		AllCompleted:      len(todos) > 0 && completed == len(todos),
	}
}

// publishLocked captures the snapshot and listener set, releases the lock,
// and fans the snapshot out. Callers must hold mu and must not touch state
// afterwards.
func (s *Store) publishLocked() {
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// setErrorLocked replaces the banner and (re)arms the auto-dismiss timer.
// A generation counter keeps a stale timer from clearing a newer message.
func (s *Store) setErrorLocked(msg string) {
	s.errMsg = msg
	s.errGen++
	gen := s.errGen
	if s.errTimer != nil {
		s.errTimer.Stop()
	}
	if msg == "" {
		s.errTimer = nil
		return
	}
	s.errTimer = time.AfterFunc(s.dismissAfter, func() {
		s.mu.Lock()
		if s.errGen != gen {
			s.mu.Unlock()
			return
		}
		s.errMsg = ""
		s.publishLocked()
	})
}

// SetFilter switches the visible subset. Persisted data is untouched.
func (s *Store) SetFilter(f model.StatusFilter) {
	s.mu.Lock()
	s.filter = f
	s.publishLocked()
}

// DismissError clears the banner ahead of the timer.
func (s *Store) DismissError() {
	s.mu.Lock()
	s.setErrorLocked("")
	s.publishLocked()
}

// Load replaces the collection from the server. On failure the banner shows
// the server-provided text.
func (s *Store) Load(ctx context.Context) error {
	todos, err := s.client.List(ctx)
	s.mu.Lock()
	if err != nil {
		s.setErrorLocked(errorText(err))
	} else {
		s.todos = todos
	}
	s.publishLocked()
	return err
}

// Add creates a record with the given title. A placeholder (id 0) is shown
// immediately and cleared once the request settles, success or not.
func (s *Store) Add(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	candidate := model.Todo{
		ID:        model.PlaceholderID,
		UserID:    s.client.UserID(),
		Title:     title,
		Completed: false,
	}

	s.mu.Lock()
	tmp := candidate
	s.temp = &tmp
	s.publishLocked()

	created, err := s.client.Create(ctx, candidate)

	s.mu.Lock()
	s.temp = nil
	if err != nil {
		s.setErrorLocked(MsgAddFailed)
	} else {
		s.todos = append(s.todos, created)
	}
	s.publishLocked()
	return err
}

// Remove deletes record id. The id sits in the pending set for the duration
// and always leaves it when the request settles.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	s.pending[id] = struct{}{}
	s.publishLocked()

	err := s.client.Delete(ctx, id)

	s.mu.Lock()
	delete(s.pending, id)
	if err != nil {
		s.setErrorLocked(MsgDeleteFailed)
	} else {
		kept := s.todos[:0]
		for _, t := range s.todos {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.todos = kept
	}
	s.publishLocked()
	return err
}

// Edit sends the changed fields of record id and merges them locally on
// success. A patch for an id no longer in the collection is a local no-op.
func (s *Store) Edit(ctx context.Context, id int, patch api.Patch) error {
	if patch.IsZero() {
		return nil
	}

	s.mu.Lock()
	s.pending[id] = struct{}{}
	s.publishLocked()

	err := s.client.Update(ctx, id, patch)

	s.mu.Lock()
	delete(s.pending, id)
	if err != nil {
		s.setErrorLocked(MsgUpdateFailed)
	} else {
		for i := range s.todos {
			if s.todos[i].ID != id {
				continue
			}
			if patch.Title != nil {
				s.todos[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				s.todos[i].Completed = *patch.Completed
			}
			break
		}
	}
	s.publishLocked()
	return err
}

// ClearCompleted removes every completed record with one independent Remove
// per record. There is no atomicity across the batch: each record succeeds
// or fails on its own and failures leave the others alone.
func (s *Store) ClearCompleted(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]int, 0, len(s.todos))
	for _, t := range s.todos {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}
	s.mu.Unlock()

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			errs[i] = s.Remove(ctx, id)
		}(i, id)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// ToggleAll flips the collection: when every record is completed all become
// active, otherwise every active record becomes completed and the rest are
// left untouched. One independent Edit per affected record.
func (s *Store) ToggleAll(ctx context.Context) error {
	s.mu.Lock()
	_, completed := model.Stats(s.todos)
	target := !(len(s.todos) > 0 && completed == len(s.todos))
	ids := make([]int, 0, len(s.todos))
	for _, t := range s.todos {
		if t.Completed != target {
			ids = append(ids, t.ID)
		}
	}
	s.mu.Unlock()

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			errs[i] = s.Edit(ctx, id, api.Patch{Completed: &target})
		}(i, id)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// errorText prefers the server's own message when the failure carries one.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
