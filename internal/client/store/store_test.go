package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/oksasatya/user-records/pkg/client"
)

func users(ids ...string) []client.User {
	out := make([]client.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, client.User{ID: id, Name: "user " + id})
	}
	return out
}

func ids(us []client.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.Key())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReduce(t *testing.T) {
	base := State{Users: users("b", "a"), Status: StatusFailed, Error: "old"}

	cases := []struct {
		name   string
		action Action
		ids    []string
		status Status
		err    string
	}{
		{"pending clears error", Action{Kind: CreateUserPending}, []string{"b", "a"}, StatusLoading, ""},
		{"fetch replaces", Action{Kind: FetchUsersFulfilled, Users: users("z")}, []string{"z"}, StatusSucceeded, ""},
		{"create prepends", Action{Kind: CreateUserFulfilled, User: client.User{ID: "c"}}, []string{"c", "b", "a"}, StatusSucceeded, ""},
		{"update replaces in place", Action{Kind: UpdateUserFulfilled, User: client.User{ID: "a", Name: "new"}}, []string{"b", "a"}, StatusSucceeded, ""},
		{"update unknown id is a no-op", Action{Kind: UpdateUserFulfilled, User: client.User{ID: "x"}}, []string{"b", "a"}, StatusSucceeded, ""},
		{"delete filters", Action{Kind: DeleteUserFulfilled, ID: "b"}, []string{"a"}, StatusSucceeded, ""},
		{"rejected records message", Action{Kind: DeleteUserRejected, Error: "User not found"}, []string{"b", "a"}, StatusFailed, "User not found"},
		{"clearError keeps status", Action{Kind: ClearError}, []string{"b", "a"}, StatusFailed, ""},
		{"setError fails", Action{Kind: SetError, Error: "boom"}, []string{"b", "a"}, StatusFailed, "boom"},
		{"unknown kind", Action{Kind: "other"}, []string{"b", "a"}, StatusFailed, "old"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reduce(base, tc.action)
			if !equal(ids(got.Users), tc.ids) || got.Status != tc.status || got.Error != tc.err {
				t.Fatalf("got ids=%v status=%s err=%q", ids(got.Users), got.Status, got.Error)
			}
		})
	}

	if !equal(ids(base.Users), []string{"b", "a"}) || base.Users[1].Name != "user a" {
		t.Fatalf("input state was mutated: %+v", base.Users)
	}
	updated := Reduce(base, Action{Kind: UpdateUserFulfilled, User: client.User{ID: "a", Name: "new"}})
	if updated.Users[1].Name != "new" {
		t.Fatalf("expected replaced record, got %+v", updated.Users[1])
	}
}

type fakeAPI struct {
	mu      sync.Mutex
	users   []client.User
	lists   int
	failOn  string
	failErr error
}

func (f *fakeAPI) fail(op string) error {
	if f.failOn == op {
		return f.failErr
	}
	return nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	return append([]client.User{}, f.users...), nil
}

func (f *fakeAPI) CreateUser(_ context.Context, p client.Payload) (*client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create"); err != nil {
		return nil, err
	}
	u := client.User{ID: p.Email, Name: p.Name, Email: p.Email}
	f.users = append([]client.User{u}, f.users...)
	return &u, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, id string, p client.Payload) (*client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("update"); err != nil {
		return nil, err
	}
	for i := range f.users {
		if f.users[i].ID == id {
			if p.Name != "" {
				f.users[i].Name = p.Name
			}
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, &client.Error{StatusCode: http.StatusNotFound, Message: "User not found"}
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("delete"); err != nil {
		return "", err
	}
	return "User deleted successfully", nil
}

func TestStore_Lifecycle(t *testing.T) {
	api := &fakeAPI{users: users("a")}
	s := New(api, nil)

	var seen []Status
	var mu sync.Mutex
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st.Status)
		mu.Unlock()
	})
	defer unsubscribe()

	if _, err := s.FetchUsers(context.Background()).Wait(); err != nil {
		t.Fatalf("FetchUsers: %v", err)
	}
	created, err := s.CreateUser(context.Background(), client.Payload{Name: "Ann", Email: "ann@example.com"}).Wait()
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got := ids(s.State().Users); !equal(got, []string{"ann@example.com", "a"}) {
		t.Fatalf("expected created user first, got %v", got)
	}

	if _, err := s.UpdateUser(context.Background(), created.ID, client.Payload{Name: "Ann B"}).Wait(); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if s.State().Users[0].Name != "Ann B" {
		t.Fatalf("expected updated name, got %+v", s.State().Users[0])
	}

	if _, err := s.DeleteUser(context.Background(), "a").Wait(); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	st := s.State()
	if !equal(ids(st.Users), []string{"ann@example.com"}) || st.Status != StatusSucceeded {
		t.Fatalf("unexpected final state: %+v", st)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []Status{StatusLoading, StatusSucceeded, StatusLoading, StatusSucceeded, StatusLoading, StatusSucceeded, StatusLoading, StatusSucceeded}
	if len(seen) != len(want) {
		t.Fatalf("unexpected transitions: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("unexpected transitions: %v", seen)
		}
	}
}

func TestStore_RejectedSetsError(t *testing.T) {
	api := &fakeAPI{failOn: "create", failErr: errors.New("Email already exists")}
	s := New(api, nil)

	_, err := s.CreateUser(context.Background(), client.Payload{Name: "Ann", Email: "ann@example.com"}).Wait()
	if err == nil || err.Error() != "Email already exists" {
		t.Fatalf("expected rejection, got %v", err)
	}
	st := s.State()
	if st.Status != StatusFailed || st.Error != "Email already exists" || len(st.Users) != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}

	s.Dispatch(Action{Kind: ClearError})
	if s.State().Error != "" {
		t.Fatal("expected error cleared")
	}
}

func TestStore_UpdateOfUnknownRecordRefetches(t *testing.T) {
	api := &fakeAPI{users: users("a", "b")}
	s := New(api, nil)

	if _, err := s.UpdateUser(context.Background(), "b", client.Payload{Name: "Bee"}).Wait(); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	s.Wait()

	api.mu.Lock()
	lists := api.lists
	api.mu.Unlock()
	if lists != 1 {
		t.Fatalf("expected one refetch, got %d", lists)
	}
	st := s.State()
	if !equal(ids(st.Users), []string{"a", "b"}) || st.Users[1].Name != "Bee" {
		t.Fatalf("expected refetched list, got %+v", st.Users)
	}
}

func TestStore_NotCancelledByCaller(t *testing.T) {
	api := &fakeAPI{users: users("a")}
	s := New(api, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p := s.FetchUsers(ctx)
	cancel()
	if got, err := p.Wait(); err != nil || len(got) != 1 {
		t.Fatalf("expected dispatched fetch to complete, got %v %v", got, err)
	}
}

func TestStore_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer srv.Close()

	s := New(client.New(srv.URL), nil)
	_, err := s.DeleteUser(context.Background(), "missing").Wait()
	var cerr *client.Error
	if !errors.As(err, &cerr) || cerr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 client error, got %v", err)
	}
	if st := s.State(); st.Status != StatusFailed || st.Error != "User not found" {
		t.Fatalf("unexpected state: %+v", st)
	}
}
