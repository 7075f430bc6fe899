package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/repository"
)

type fakeWagonRepo struct {
	byID map[string]domain.Wagon
}

func newFakeWagonRepo() *fakeWagonRepo {
	return &fakeWagonRepo{byID: make(map[string]domain.Wagon)}
}

func (f *fakeWagonRepo) Create(_ context.Context, wagon domain.Wagon) error {
	f.byID[wagon.ID] = wagon
	return nil
}

func (f *fakeWagonRepo) GetByID(_ context.Context, id string) (*domain.Wagon, error) {
	wagon, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := wagon
	return &copied, nil
}

func (f *fakeWagonRepo) List(context.Context) ([]domain.Wagon, error) {
	wagons := make([]domain.Wagon, 0, len(f.byID))
	for _, wagon := range f.byID {
		wagons = append(wagons, wagon)
	}
	return wagons, nil
}

func (f *fakeWagonRepo) Update(_ context.Context, wagon domain.Wagon) error {
	if _, ok := f.byID[wagon.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[wagon.ID] = wagon
	return nil
}

func (f *fakeWagonRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeWagonRepo) OwnerID(_ context.Context, id string) (string, error) {
	wagon, ok := f.byID[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return wagon.CreatorID, nil
}

func TestCreateWagonRecordsCreator(t *testing.T) {
	repo := newFakeWagonRepo()
	service := NewWagonService(repo)

	wagon, err := service.CreateWagon(context.Background(), "user-7", CreateWagonInput{Number: " 12-345 "})
	if err != nil {
		t.Fatalf("CreateWagon: %v", err)
	}
	if wagon.Number != "12-345" {
		t.Errorf("number = %q, want trimmed", wagon.Number)
	}
	if wagon.CreatorID != "user-7" {
		t.Errorf("creator = %q, want user-7", wagon.CreatorID)
	}
	if wagon.ID == "" {
		t.Error("wagon must get a generated id")
	}

	// The ownership adapter resolves the creator just recorded.
	owner, err := service.OwnerLookup()(context.Background(), wagon.ID)
	if err != nil {
		t.Fatalf("OwnerLookup: %v", err)
	}
	if owner != "user-7" {
		t.Errorf("owner = %q, want user-7", owner)
	}
}

func TestCreateWagonRequiresNumberAndCreator(t *testing.T) {
	service := NewWagonService(newFakeWagonRepo())

	if _, err := service.CreateWagon(context.Background(), "user-7", CreateWagonInput{Number: "  "}); err == nil {
		t.Fatal("blank number must be rejected")
	}
	if _, err := service.CreateWagon(context.Background(), "", CreateWagonInput{Number: "12-345"}); err == nil {
		t.Fatal("missing creator must be rejected")
	}
}

func TestUpdateWagonKeepsCreator(t *testing.T) {
	repo := newFakeWagonRepo()
	service := NewWagonService(repo)

	created, err := service.CreateWagon(context.Background(), "user-7", CreateWagonInput{Number: "12-345"})
	if err != nil {
		t.Fatalf("CreateWagon: %v", err)
	}

	number := "98-765"
	updated, err := service.UpdateWagon(context.Background(), UpdateWagonInput{ID: created.ID, Number: &number})
	if err != nil {
		t.Fatalf("UpdateWagon: %v", err)
	}
	if updated.Number != "98-765" {
		t.Errorf("number = %q", updated.Number)
	}
	if updated.CreatorID != "user-7" {
		t.Error("creator must never change on update")
	}
}

func TestWagonOwnerLookupMissPropagatesNotFound(t *testing.T) {
	service := NewWagonService(newFakeWagonRepo())

	_, err := service.OwnerLookup()(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserServiceStripsPasswordHash(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
		Roles:        []domain.Role{domain.RoleUser},
		RegisteredAt: time.Now().UTC(),
	})
	service := NewUserService(users)

	user, err := service.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("password hash must be stripped from reads")
	}

	listed, err := service.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	for _, user := range listed {
		if user.PasswordHash != "" {
			t.Error("password hash must be stripped from listings")
		}
	}
}

func TestUpdateUserRejectsEmptyRoleSet(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{ID: "user-1", Email: "alice@example.com", Roles: []domain.Role{domain.RoleUser}})
	service := NewUserService(users)

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{ID: "user-1", Roles: []domain.Role{}})
	if err == nil {
		t.Fatal("clearing every role must be rejected")
	}
}
