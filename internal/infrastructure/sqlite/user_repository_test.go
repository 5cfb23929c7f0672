package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/oksasatya/user-records/internal/domain/entity"
	"github.com/oksasatya/user-records/internal/domain/repository"
	"github.com/oksasatya/user-records/internal/infrastructure/migrations"
	"github.com/oksasatya/user-records/internal/infrastructure/sqlite"
)

func newTestRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Up(db, migrations.DialectSQLite, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlite.NewUserRepository(db)
}

func newUser(name, email string) *entity.User {
	return &entity.User{Name: name, Email: email, ImageURL: "http://localhost/uploads/a.png"}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := newUser("Ann", "ann@example.com")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() || !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Fatalf("expected id and timestamps to be set: %+v", u)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Ann" || got.Email != "ann@example.com" || got.ImageURL != u.ImageURL {
		t.Fatalf("unexpected user: %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, "  ANN@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("GetByEmail returned %s, want %s", byEmail.ID, u.ID)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newUser("Ann", "dup@example.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, newUser("Bob", "dup@example.com"))
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	other := newUser("Cat", "cat@example.com")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other.Email = "dup@example.com"
	if err := repo.Update(ctx, other); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail on update, got %v", err)
	}
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if err := repo.Create(ctx, newUser("User", email)); err != nil {
			t.Fatalf("Create %s: %v", email, err)
		}
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].Email != "c@example.com" || users[2].Email != "a@example.com" {
		t.Fatalf("unexpected order: %s, %s, %s", users[0].Email, users[1].Email, users[2].Email)
	}
}

func TestUserRepository_ListEmpty(t *testing.T) {
	repo := newTestRepo(t)
	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", users)
	}
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := newUser("Ann", "ann@example.com")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	created := u.UpdatedAt

	u.Name = "Annie"
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.UpdatedAt.Before(created) {
		t.Fatal("expected UpdatedAt to move forward")
	}
	got, _ := repo.GetByID(ctx, u.ID)
	if got.Name != "Annie" {
		t.Fatalf("expected updated name, got %q", got.Name)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	if err := repo.Update(ctx, &entity.User{ID: "missing", Name: "Zed", Email: "z@example.com", ImageURL: "x"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing, got %v", err)
	}
}
