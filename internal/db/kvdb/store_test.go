// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	database, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestHouseholdStore_CRUD(t *testing.T) {
	database := openTestDB(t)
	store, err := NewHouseholdStore(database)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	id, err := store.CreateHousehold(ctx, &model.Household{
		InvitationName: "Smith Family",
		Members:        []string{"John Smith", "Jane Smith"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetHouseholdByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.InvitationName != "Smith Family" {
		t.Fatalf("invitation name: got %q", got.InvitationName)
	}
	if got.InvitationNameLower != "smith family" {
		t.Fatalf("match key not derived: got %q", got.InvitationNameLower)
	}
	if got.CreatedAt == nil {
		t.Fatal("CreatedAt not set")
	}

	got.Notes = "vegetarians"
	if err := store.UpdateHousehold(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = store.GetHouseholdByID(ctx, id)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Notes != "vegetarians" || got.UpdatedAt == nil {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := store.DeleteHousehold(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetHouseholdByID(ctx, id); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestHouseholdStore_UpdateMissing(t *testing.T) {
	store, err := NewHouseholdStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = store.UpdateHousehold(context.Background(), &model.Household{
		ID:             uuid.New(),
		InvitationName: "Nobody",
	})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestHouseholdStore_DeleteMissing(t *testing.T) {
	store, err := NewHouseholdStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = store.DeleteHousehold(context.Background(), uuid.New())
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestHouseholdStore_ImportAppendSkipsDuplicates(t *testing.T) {
	store, err := NewHouseholdStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.CreateHousehold(ctx, &model.Household{InvitationName: "Smith Family"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := store.ImportHouseholds(ctx, []*model.Household{
		{InvitationName: "smith family"}, // duplicate under case folding
		{InvitationName: "Alex Johnson"},
	}, db.ImportAppend)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Fatalf("want 1 added / 1 skipped, got %+v", result)
	}

	households, err := store.ListHouseholds(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(households) != 2 {
		t.Fatalf("want 2 households, got %d", len(households))
	}
}

func TestHouseholdStore_ImportReplaceClearsFirst(t *testing.T) {
	store, err := NewHouseholdStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.CreateHousehold(ctx, &model.Household{InvitationName: "Old Guard"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := store.ImportHouseholds(ctx, []*model.Household{
		{InvitationName: "Smith Family"},
		{InvitationName: "Alex Johnson"},
	}, db.ImportReplace)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Fatalf("want 2 added / 0 skipped, got %+v", result)
	}

	households, err := store.ListHouseholds(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(households) != 2 {
		t.Fatalf("replace should drop the old list, got %d households", len(households))
	}
	for _, h := range households {
		if h.InvitationName == "Old Guard" {
			t.Fatal("old household survived a replace import")
		}
	}
}

func TestResponseStore_SubmitResponseIsAtomic(t *testing.T) {
	database := openTestDB(t)
	households, err := NewHouseholdStore(database)
	if err != nil {
		t.Fatalf("new household store: %v", err)
	}
	responses, err := NewResponseStore(database)
	if err != nil {
		t.Fatalf("new response store: %v", err)
	}
	ctx := context.Background()

	householdID, err := households.CreateHousehold(ctx, &model.Household{InvitationName: "Smith Family"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	response := &model.RsvpResponse{
		HouseholdID:    householdID,
		RespondentName: "John Smith",
		Attending:      model.AttendanceYes,
	}
	if err := responses.SubmitResponse(ctx, response); err != nil {
		t.Fatalf("submit: %v", err)
	}

	h, err := households.GetHouseholdByID(ctx, householdID)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if !h.HasResponded {
		t.Fatal("household flag not flipped with the response write")
	}

	// An unknown household fails the whole transaction: no response
	// record may survive.
	bad := &model.RsvpResponse{
		HouseholdID:    uuid.New(),
		RespondentName: "Stranger",
		Attending:      model.AttendanceYes,
	}
	if err := responses.SubmitResponse(ctx, bad); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := responses.GetResponseByID(ctx, bad.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("partial write leaked: %v", err)
	}
}

func TestResponseStore_FindByHousehold(t *testing.T) {
	database := openTestDB(t)
	responses, err := NewResponseStore(database)
	if err != nil {
		t.Fatalf("new response store: %v", err)
	}
	ctx := context.Background()

	householdID := uuid.New()
	if _, err := responses.CreateResponse(ctx, &model.RsvpResponse{
		HouseholdID:    householdID,
		RespondentName: "John",
		Attending:      model.AttendanceNo,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := responses.FindResponseByHousehold(ctx, householdID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.RespondentName != "John" {
		t.Fatalf("wrong response: %+v", found)
	}

	if _, err := responses.FindResponseByHousehold(ctx, uuid.New()); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestConfigStore_DefaultsUntilWritten(t *testing.T) {
	store, err := NewConfigStore(openTestDB(t))
	if err != nil {
		t.Fatalf("new config store: %v", err)
	}
	ctx := context.Background()

	cfg, err := store.GetFormConfig(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !cfg.Shown("phone") || cfg.Shown("transportNeeded") {
		t.Fatalf("unexpected defaults: %+v", cfg.Fields)
	}
	if cfg.UpdatedAt != nil {
		t.Fatal("defaults must not look like a stored document")
	}

	cfg.Fields["phone"] = false
	if err := store.PutFormConfig(ctx, cfg); err != nil {
		t.Fatalf("put: %v", err)
	}

	cfg, err = store.GetFormConfig(ctx)
	if err != nil {
		t.Fatalf("get after put: %v", err)
	}
	if cfg.Shown("phone") {
		t.Fatal("stored override lost")
	}
	if cfg.UpdatedAt == nil {
		t.Fatal("UpdatedAt not set on write")
	}
}
