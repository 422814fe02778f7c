// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package kvdb

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/mbaskhairoun/MMEngagement/internal/db/kvdb")
