package store

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/pkg/client"
)

// API is the subset of the SDK the store drives.
type API interface {
	ListUsers(ctx context.Context) ([]client.User, error)
	CreateUser(ctx context.Context, p client.Payload) (*client.User, error)
	UpdateUser(ctx context.Context, id string, p client.Payload) (*client.User, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}

// Pending is the eventual result of an async action.
type Pending[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

func (p *Pending[T]) settle(v T, err error) {
	p.val, p.err = v, err
	close(p.done)
}

// Wait blocks until the action settles and returns its payload, or the
// error that rejected it.
func (p *Pending[T]) Wait() (T, error) {
	<-p.done
	return p.val, p.err
}

// Store holds State and applies Reduce to every dispatched action.
// Subscribers run synchronously after each transition and must not
// dispatch.
type Store struct {
	api    API
	logger logrus.FieldLogger

	emit  sync.Mutex
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int

	inflight sync.WaitGroup
}

func New(api API, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Store{
		api:    api,
		logger: logger,
		state:  Initial(),
		subs:   make(map[int]func(State)),
	}
}

// State returns a snapshot safe to read without the lock.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies a synchronous action such as ClearError or SetError.
func (s *Store) Dispatch(a Action) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := snapshot(s.state)
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// Wait blocks until every dispatched async action has settled.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) FetchUsers(ctx context.Context) *Pending[[]client.User] {
	p := newPending[[]client.User]()
	s.run(ctx, FetchUsersPending, func(ctx context.Context) {
		users, err := s.api.ListUsers(ctx)
		if err != nil {
			s.reject(FetchUsersRejected, err)
			p.settle(nil, err)
			return
		}
		s.Dispatch(Action{Kind: FetchUsersFulfilled, Users: users})
		p.settle(users, nil)
	})
	return p
}

func (s *Store) CreateUser(ctx context.Context, payload client.Payload) *Pending[client.User] {
	p := newPending[client.User]()
	s.run(ctx, CreateUserPending, func(ctx context.Context) {
		u, err := s.api.CreateUser(ctx, payload)
		if err != nil {
			s.reject(CreateUserRejected, err)
			p.settle(client.User{}, err)
			return
		}
		s.Dispatch(Action{Kind: CreateUserFulfilled, User: *u})
		p.settle(*u, nil)
	})
	return p
}

// UpdateUser replaces the record in the list. When the list does not hold
// the id, the list is fetched again so it reflects the server.
func (s *Store) UpdateUser(ctx context.Context, id string, payload client.Payload) *Pending[client.User] {
	p := newPending[client.User]()
	s.run(ctx, UpdateUserPending, func(ctx context.Context) {
		u, err := s.api.UpdateUser(ctx, id, payload)
		if err != nil {
			s.reject(UpdateUserRejected, err)
			p.settle(client.User{}, err)
			return
		}
		s.mu.Lock()
		known := indexOf(s.state.Users, u.Key()) >= 0
		s.mu.Unlock()

		s.Dispatch(Action{Kind: UpdateUserFulfilled, User: *u})
		if !known {
			s.logger.WithField("user_id", u.Key()).Debug("updated user not in list, refetching")
			s.FetchUsers(ctx)
		}
		p.settle(*u, nil)
	})
	return p
}

func (s *Store) DeleteUser(ctx context.Context, id string) *Pending[string] {
	p := newPending[string]()
	s.run(ctx, DeleteUserPending, func(ctx context.Context) {
		if _, err := s.api.DeleteUser(ctx, id); err != nil {
			s.reject(DeleteUserRejected, err)
			p.settle("", err)
			return
		}
		s.Dispatch(Action{Kind: DeleteUserFulfilled, ID: id})
		p.settle(id, nil)
	})
	return p
}

// run dispatches the pending action and starts fn in its own goroutine.
// The caller's cancellation does not reach fn once dispatched.
func (s *Store) run(ctx context.Context, pending string, fn func(context.Context)) {
	s.Dispatch(Action{Kind: pending})
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn(ctx)
	}()
}

func (s *Store) reject(kind string, err error) {
	s.logger.WithError(err).WithField("action", kind).Warn("user action rejected")
	s.Dispatch(Action{Kind: kind, Error: err.Error()})
}

func snapshot(st State) State {
	st.Users = append([]client.User{}, st.Users...)
	return st
}
