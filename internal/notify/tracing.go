// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package notify

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/mbaskhairoun/MMEngagement/internal/notify")
