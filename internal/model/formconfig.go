// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package model

import "time"

// FormConfig maps a public-form field name to whether the field is
// shown. It is written wholesale by an administrator, never patched;
// an absent document means the defaults apply.
type FormConfig struct {
	Fields    map[string]bool `json:"fields"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// DefaultFormConfig returns the defined default for every toggleable
// field.
func DefaultFormConfig() *FormConfig {
	return &FormConfig{
		Fields: map[string]bool{
			"phone":               true,
			"relationship":        true,
			"mealPreference":      true,
			"dietary":             true,
			"childrenCount":       true,
			"songRequest":         true,
			"transportNeeded":     false,
			"accommodationNeeded": false,
			"specialRequests":     true,
			"message":             true,
		},
	}
}

// Shown reports whether the named field is visible, falling back to
// the default for fields the stored document does not mention.
func (c *FormConfig) Shown(field string) bool {
	if c != nil && c.Fields != nil {
		if v, ok := c.Fields[field]; ok {
			return v
		}
	}
	v, ok := DefaultFormConfig().Fields[field]
	return ok && v
}
