// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

const bucketHousehold = "household_store"

func NewHouseholdStore(database *bolt.DB) (*HouseholdStore, error) {
	return &HouseholdStore{db: database}, database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketHousehold))
		return err
	})
}

type HouseholdStore struct {
	db *bolt.DB
}

func (h *HouseholdStore) CreateHousehold(ctx context.Context, household *model.Household) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateHousehold")
	defer span.End()

	if household.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		household.ID = uuid.New()
	}
	if err := household.Normalize(); err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	household.CreatedAt = &now

	j, err := json.Marshal(household)
	if err != nil {
		return uuid.Nil, err
	}

	span.AddEvent("Update bucket")
	return household.ID, h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHousehold))
		if bucket.Get(household.ID[:]) != nil {
			err := errors.New("household already exists")
			span.RecordError(err)
			return err
		}
		return bucket.Put(household.ID[:], j)
	})
}

func (h *HouseholdStore) UpdateHousehold(ctx context.Context, household *model.Household) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateHousehold")
	defer span.End()

	if household.ID == uuid.Nil {
		err := errors.New("household ID is required for updating")
		span.RecordError(err)
		return err
	}
	if err := household.Normalize(); err != nil {
		span.RecordError(err)
		return err
	}
	now := time.Now()
	household.UpdatedAt = &now

	j, err := json.Marshal(household)
	if err != nil {
		return err
	}

	span.AddEvent("Update bucket")
	return h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHousehold))
		if bucket.Get(household.ID[:]) == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return bucket.Put(household.ID[:], j)
	})
}

func (h *HouseholdStore) DeleteHousehold(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteHousehold")
	defer span.End()

	if id == uuid.Nil {
		err := errors.New("household ID is required for deleting")
		span.RecordError(err)
		return err
	}
	span.AddEvent("Update bucket")
	return h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHousehold))
		if bucket.Get(id[:]) == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return bucket.Delete(id[:])
	})
}

func (h *HouseholdStore) GetHouseholdByID(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetHouseholdByID")
	defer span.End()

	span.AddEvent("View bucket")
	household := &model.Household{}
	err := h.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketHousehold)).Get(id[:])
		if res == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return json.Unmarshal(res, household)
	})
	if err != nil {
		return nil, err
	}
	if err := household.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return household, nil
}

func (h *HouseholdStore) ListHouseholds(ctx context.Context) ([]*model.Household, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListHouseholds")
	defer span.End()

	span.AddEvent("View bucket")
	var households []*model.Household
	return households, h.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketHousehold)).ForEach(func(_, v []byte) error {
			household := &model.Household{}
			if err := json.Unmarshal(v, household); err != nil {
				span.RecordError(err)
				return err
			}
			if err := household.Validate(); err != nil {
				span.RecordError(err)
				return err
			}
			households = append(households, household)
			return nil
		})
	})
}

func (h *HouseholdStore) SetResponded(ctx context.Context, id uuid.UUID, responded bool) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SetResponded")
	defer span.End()

	span.AddEvent("Update bucket")
	return h.db.Update(func(tx *bolt.Tx) error {
		return setResponded(tx, id, responded)
	})
}

// setResponded updates the flag inside a caller-owned transaction so
// a response write can share it.
func setResponded(tx *bolt.Tx, id uuid.UUID, responded bool) error {
	bucket := tx.Bucket([]byte(bucketHousehold))
	res := bucket.Get(id[:])
	if res == nil {
		return db.ErrNotFound
	}
	household := &model.Household{}
	if err := json.Unmarshal(res, household); err != nil {
		return err
	}
	household.HasResponded = responded
	now := time.Now()
	household.UpdatedAt = &now
	j, err := json.Marshal(household)
	if err != nil {
		return err
	}
	return bucket.Put(id[:], j)
}

// ImportHouseholds writes one spreadsheet import in a single bolt
// transaction, so the batch commits or fails as a whole.
func (h *HouseholdStore) ImportHouseholds(ctx context.Context, households []*model.Household, mode db.ImportMode) (*db.ImportResult, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ImportHouseholds")
	defer span.End()

	for _, household := range households {
		if household.ID == uuid.Nil {
			household.ID = uuid.New()
		}
		if err := household.Normalize(); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	result := &db.ImportResult{}
	span.AddEvent("Update bucket")
	return result, h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHousehold))

		existing := make(map[string]struct{})
		switch mode {
		case db.ImportReplace:
			if err := tx.DeleteBucket([]byte(bucketHousehold)); err != nil {
				return err
			}
			var err error
			if bucket, err = tx.CreateBucket([]byte(bucketHousehold)); err != nil {
				return err
			}
		case db.ImportAppend:
			err := bucket.ForEach(func(_, v []byte) error {
				household := &model.Household{}
				if err := json.Unmarshal(v, household); err != nil {
					return err
				}
				existing[model.Fold(household.InvitationName)] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown import mode %q", mode)
		}

		now := time.Now()
		for _, household := range households {
			if _, ok := existing[household.InvitationNameLower]; ok {
				result.Skipped++
				continue
			}
			household.CreatedAt = &now
			j, err := json.Marshal(household)
			if err != nil {
				return err
			}
			if err := bucket.Put(household.ID[:], j); err != nil {
				return err
			}
			existing[household.InvitationNameLower] = struct{}{}
			result.Added++
		}
		return nil
	})
}
