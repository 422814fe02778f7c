// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

const (
	bucketSettings = "settings_store"
	keyFormConfig  = "form_config"
)

func NewConfigStore(database *bolt.DB) (*ConfigStore, error) {
	return &ConfigStore{db: database}, database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSettings))
		return err
	})
}

type ConfigStore struct {
	db *bolt.DB
}

func (c *ConfigStore) GetFormConfig(ctx context.Context) (*model.FormConfig, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetFormConfig")
	defer span.End()

	span.AddEvent("View bucket")
	cfg := &model.FormConfig{}
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketSettings)).Get([]byte(keyFormConfig))
		if res == nil {
			return nil
		}
		found = true
		return json.Unmarshal(res, cfg)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !found {
		span.AddEvent("no stored config, using defaults")
		return model.DefaultFormConfig(), nil
	}
	return cfg, nil
}

func (c *ConfigStore) PutFormConfig(ctx context.Context, cfg *model.FormConfig) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "PutFormConfig")
	defer span.End()

	now := time.Now()
	cfg.UpdatedAt = &now
	j, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	span.AddEvent("Update bucket")
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSettings)).Put([]byte(keyFormConfig), j)
	})
}
