package store

import (
	"github.com/oksasatya/user-records/pkg/client"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the client-side view of the user list.
type State struct {
	Users  []client.User
	Status Status
	Error  string
}

func Initial() State {
	return State{Users: []client.User{}, Status: StatusIdle}
}

// Action kinds follow "<op>/<phase>".
const (
	FetchUsersPending   = "users/fetchUsers/pending"
	FetchUsersFulfilled = "users/fetchUsers/fulfilled"
	FetchUsersRejected  = "users/fetchUsers/rejected"

	CreateUserPending   = "users/createUser/pending"
	CreateUserFulfilled = "users/createUser/fulfilled"
	CreateUserRejected  = "users/createUser/rejected"

	UpdateUserPending   = "users/updateUser/pending"
	UpdateUserFulfilled = "users/updateUser/fulfilled"
	UpdateUserRejected  = "users/updateUser/rejected"

	DeleteUserPending   = "users/deleteUser/pending"
	DeleteUserFulfilled = "users/deleteUser/fulfilled"
	DeleteUserRejected  = "users/deleteUser/rejected"

	ClearError = "users/clearError"
	SetError   = "users/setError"
)

// Action carries the payload for its Kind: Users for list, User for
// create/update, ID for delete, Error for rejected and setError.
type Action struct {
	Kind  string
	Users []client.User
	User  client.User
	ID    string
	Error string
}

// Reduce returns the next state. It never mutates s.
func Reduce(s State, a Action) State {
	next := State{Users: s.Users, Status: s.Status, Error: s.Error}

	switch a.Kind {
	case FetchUsersPending, CreateUserPending, UpdateUserPending, DeleteUserPending:
		next.Status = StatusLoading
		next.Error = ""

	case FetchUsersRejected, CreateUserRejected, UpdateUserRejected, DeleteUserRejected, SetError:
		next.Status = StatusFailed
		next.Error = a.Error

	case ClearError:
		next.Error = ""

	case FetchUsersFulfilled:
		next.Users = append([]client.User{}, a.Users...)
		succeed(&next)

	case CreateUserFulfilled:
		users := make([]client.User, 0, len(s.Users)+1)
		users = append(users, a.User)
		next.Users = append(users, s.Users...)
		succeed(&next)

	case UpdateUserFulfilled:
		if i := indexOf(s.Users, a.User.Key()); i >= 0 {
			users := append([]client.User{}, s.Users...)
			users[i] = a.User
			next.Users = users
		}
		succeed(&next)

	case DeleteUserFulfilled:
		users := make([]client.User, 0, len(s.Users))
		for _, u := range s.Users {
			if u.Key() != a.ID {
				users = append(users, u)
			}
		}
		next.Users = users
		succeed(&next)
	}
	return next
}

func succeed(s *State) {
	s.Status = StatusSucceeded
	s.Error = ""
}

func indexOf(users []client.User, id string) int {
	for i, u := range users {
		if u.Key() == id {
			return i
		}
	}
	return -1
}
