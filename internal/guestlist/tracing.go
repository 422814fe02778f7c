// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package guestlist

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/mbaskhairoun/MMEngagement/internal/guestlist")
