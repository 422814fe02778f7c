// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// ConfigStore keeps the form configuration in a JSON file.
type ConfigStore struct {
	filename string
	mu       sync.RWMutex
	cfg      *model.FormConfig
}

func NewConfigStore(filename string) (*ConfigStore, error) {
	store := &ConfigStore{filename: filename}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (c *ConfigStore) GetFormConfig(ctx context.Context) (*model.FormConfig, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetFormConfig")
	defer span.End()

	span.AddEvent("RLock")
	c.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer c.mu.RUnlock()

	if c.cfg == nil {
		span.AddEvent("no stored config, using defaults")
		return model.DefaultFormConfig(), nil
	}
	return c.cfg, nil
}

func (c *ConfigStore) PutFormConfig(ctx context.Context, cfg *model.FormConfig) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutFormConfig")
	defer span.End()

	span.AddEvent("Lock")
	c.mu.Lock()
	defer span.AddEvent("Unlock")
	defer c.mu.Unlock()

	now := time.Now()
	cfg.UpdatedAt = &now
	c.cfg = cfg

	return c.saveToFile(ctx)
}

func (c *ConfigStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(c.cfg, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := os.WriteFile(c.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *ConfigStore) loadFromFile() error {
	if _, err := os.Stat(c.filename); os.IsNotExist(err) {
		// File does not exist, defaults apply
		return nil
	}

	fileData, err := os.ReadFile(c.filename)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := &model.FormConfig{}
	if err := json.Unmarshal(fileData, cfg); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}
