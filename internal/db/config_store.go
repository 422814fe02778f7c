// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

type ConfigStore interface {
	// GetFormConfig returns the stored configuration, or the
	// defaults when none has been written yet.
	GetFormConfig(context.Context) (*model.FormConfig, error)
	// PutFormConfig overwrites the configuration wholesale.
	PutFormConfig(context.Context, *model.FormConfig) error
}
