package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateUser_SendsMultipartWithImage(t *testing.T) {
	var gotName, gotEmail, gotImageURL, gotFile, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotName, gotEmail, gotImageURL = r.FormValue("name"), r.FormValue("email"), r.FormValue("imageUrl")
		f, fh, err := r.FormFile("image")
		if err == nil {
			b, _ := io.ReadAll(f)
			gotFile = fh.Filename + ":" + string(b)
			gotType = fh.Header.Get("Content-Type")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"u1","id":"u1","name":"Ann","email":"ann@example.com","imageUrl":"http://x/uploads/a.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	u, err := c.CreateUser(context.Background(), Payload{
		Name:     "Ann",
		Email:    "ann@example.com",
		ImageURL: "ignored",
		Image:    &Image{Filename: "a.png", ContentType: "image/png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Key() != "u1" || u.Email != "ann@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if gotName != "Ann" || gotEmail != "ann@example.com" {
		t.Fatalf("unexpected fields name=%q email=%q", gotName, gotEmail)
	}
	if gotImageURL != "" {
		t.Fatalf("imageUrl should not be sent with a file, got %q", gotImageURL)
	}
	if gotFile != "a.png:png" || gotType != "image/png" {
		t.Fatalf("unexpected file part %q (%s)", gotFile, gotType)
	}
}

func TestUpdateUser_OmitsEmptyFields(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/u1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = r.ParseMultipartForm(1 << 20)
		form = r.MultipartForm.Value
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": "u1", "name": "Ann B"})
	}))
	defer srv.Close()

	u, err := New(srv.URL).UpdateUser(context.Background(), "u1", Payload{Name: "Ann B"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Key() != "u1" {
		t.Fatalf("expected _id fallback, got %+v", u)
	}
	if len(form) != 1 || form["name"][0] != "Ann B" {
		t.Fatalf("expected only name to be sent, got %v", form)
	}
}

func TestListAndDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"b","name":"Bo"},{"id":"a","name":"Al"}]`))
	})
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"User deleted successfully"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != "b" {
		t.Fatalf("unexpected list: %+v", users)
	}
	msg, err := c.DeleteUser(context.Background(), "a")
	if err != nil || msg != "User deleted successfully" {
		t.Fatalf("DeleteUser: %q %v", msg, err)
	}
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Email already exists","field":"email"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateUser(context.Background(), Payload{Name: "Ann"})
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if cerr.StatusCode != http.StatusBadRequest || cerr.Message != "Email already exists" || cerr.Network {
		t.Fatalf("unexpected error: %+v", cerr)
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListUsers(context.Background())
	if err == nil || err.Error() != "Request failed with status code 502" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListUsers(context.Background())
	var cerr *Error
	if !errors.As(err, &cerr) || !cerr.Network {
		t.Fatalf("expected network error, got %v", err)
	}
	if cerr.Message != MsgUnreachable {
		t.Fatalf("unexpected message: %q", cerr.Message)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).ListUsers(context.Background())
	var cerr *Error
	if !errors.As(err, &cerr) || !cerr.Network || cerr.Message != MsgTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
