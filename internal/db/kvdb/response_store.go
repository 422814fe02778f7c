// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

const bucketResponse = "rsvp_store"

func NewResponseStore(database *bolt.DB) (*ResponseStore, error) {
	return &ResponseStore{db: database}, database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketResponse))
		return err
	})
}

type ResponseStore struct {
	db *bolt.DB
}

func (r *ResponseStore) CreateResponse(ctx context.Context, response *model.RsvpResponse) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateResponse")
	defer span.End()

	if err := prepareInsert(response); err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	j, err := json.Marshal(response)
	if err != nil {
		return uuid.Nil, err
	}

	span.AddEvent("Update bucket")
	return response.ID, r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResponse)).Put(response.ID[:], j)
	})
}

func (r *ResponseStore) UpdateResponse(ctx context.Context, response *model.RsvpResponse) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateResponse")
	defer span.End()

	if response.ID == uuid.Nil {
		err := errors.New("response ID is required for updating")
		span.RecordError(err)
		return err
	}
	if err := response.Validate(); err != nil {
		span.RecordError(err)
		return err
	}
	now := time.Now()
	response.UpdatedAt = &now

	j, err := json.Marshal(response)
	if err != nil {
		return err
	}

	span.AddEvent("Update bucket")
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketResponse))
		if bucket.Get(response.ID[:]) == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return bucket.Put(response.ID[:], j)
	})
}

func (r *ResponseStore) DeleteResponse(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteResponse")
	defer span.End()

	span.AddEvent("Update bucket")
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketResponse))
		if bucket.Get(id[:]) == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return bucket.Delete(id[:])
	})
}

func (r *ResponseStore) GetResponseByID(ctx context.Context, id uuid.UUID) (*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetResponseByID")
	defer span.End()

	span.AddEvent("View bucket")
	response := &model.RsvpResponse{}
	err := r.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketResponse)).Get(id[:])
		if res == nil {
			span.RecordError(db.ErrNotFound)
			return db.ErrNotFound
		}
		return json.Unmarshal(res, response)
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (r *ResponseStore) FindResponseByHousehold(ctx context.Context, householdID uuid.UUID) (*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FindResponseByHousehold")
	defer span.End()

	span.AddEvent("View bucket")
	var found *model.RsvpResponse
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResponse)).ForEach(func(_, v []byte) error {
			response := &model.RsvpResponse{}
			if err := json.Unmarshal(v, response); err != nil {
				span.RecordError(err)
				return err
			}
			if response.HouseholdID == householdID && found == nil {
				found = response
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, db.ErrNotFound
	}
	return found, nil
}

func (r *ResponseStore) ListResponses(ctx context.Context) ([]*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListResponses")
	defer span.End()

	span.AddEvent("View bucket")
	var responses []*model.RsvpResponse
	return responses, r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResponse)).ForEach(func(_, v []byte) error {
			response := &model.RsvpResponse{}
			if err := json.Unmarshal(v, response); err != nil {
				span.RecordError(err)
				return err
			}
			responses = append(responses, response)
			return nil
		})
	})
}

// SubmitResponse writes the response and flips the owning household's
// has-responded flag in one transaction. Both buckets live in the
// same bolt database, so there is no window where a response exists
// while the flag is stale.
func (r *ResponseStore) SubmitResponse(ctx context.Context, response *model.RsvpResponse) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SubmitResponse")
	defer span.End()

	if err := prepareInsert(response); err != nil {
		span.RecordError(err)
		return err
	}
	j, err := json.Marshal(response)
	if err != nil {
		return err
	}

	span.AddEvent("Update buckets")
	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketResponse)).Put(response.ID[:], j); err != nil {
			return err
		}
		return setResponded(tx, response.HouseholdID, true)
	})
}

func prepareInsert(response *model.RsvpResponse) error {
	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	if err := response.Validate(); err != nil {
		return err
	}
	now := time.Now()
	response.CreatedAt = &now
	response.UpdatedAt = &now
	return nil
}
