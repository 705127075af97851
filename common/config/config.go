package config

import (
	"strings"
	"time"

	"github.com/teenytinyai/teenytiny-conformance/common/env"
)

var (
	// BaseURL selects the target server under test. The harness appends the
	// versioned API paths itself, so only the host portion belongs here.
	BaseURL = strings.TrimRight(env.String("TEENYTINY_URL", "http://localhost:8080"), "/")

	// APIKey is the bearer credential sent with every authenticated request.
	// Scenarios that exercise authentication failures build their own
	// clients with a different credential instead of mutating this one.
	APIKey = env.String("TEENYTINY_API_KEY", "testkey")

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// RequestTimeout bounds a single blocking HTTP request (seconds).
	// Streaming requests rely on the per-run context instead, so a slow
	// stream is not cut off mid-chunk.
	RequestTimeout = time.Second * time.Duration(env.Int("REQUEST_TIMEOUT", 60))
)
