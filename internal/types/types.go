// Package types provides domain models shared across namekeeper components.
//
// Wire-agnostic design: rule configuration arrives as YAML files, gRPC
// structpb messages or Go literals in tests. Each adapter converts into the
// types here, and internal/naming consumes nothing else. ID utilities in
// ids.go import uuid but are isolated from the rule types.
package types

import "time"

// RunID represents a UUIDv7 lint run identifier.
// String alias enables type safety while maintaining JSON string serialization.
type RunID string

// ViolationID represents a UUIDv7 identifier of a persisted violation.
type ViolationID string

// Resource limits enforced while loading rule configuration and serving requests.
const (
	// MaxRules bounds the rule table so validator construction stays cheap.
	// Expanded selector lists count once per selector.
	MaxRules = 512

	// MaxPatternLength bounds filter and custom regular expressions.
	MaxPatternLength = 1024

	// MaxAffixes bounds prefix and suffix lists per rule.
	MaxAffixes = 64

	// MaxSourceSize limits source text accepted by CheckSource (1MB).
	MaxSourceSize = 1024 * 1024

	// MaxNameLength limits identifier length accepted by CheckNames.
	MaxNameLength = 4096

	// MatchTimeout bounds a single filter or custom regex match.
	// Patterns arrive from requests, so backtracking must not outlive a call.
	MatchTimeout = 100 * time.Millisecond
)
