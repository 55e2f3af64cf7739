// Package api implements the NamingPolicy gRPC service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/namekeeper/internal/core/config"
	"github.com/solatis/namekeeper/internal/core/db"
	"github.com/solatis/namekeeper/internal/lint"
	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/types"
)

var errBadRequest = errors.New("malformed request")

// Service implements NamingPolicyServer.
// Thin orchestration layer over the naming engine, classifier and store.
type Service struct {
	cfg    *config.PolicyAPIConfig
	engine *naming.Engine // server default rules; nil when none configured
	digest string
	store  *db.Store // nil disables run recording
	logger *slog.Logger
}

var _ NamingPolicyServer = (*Service)(nil)

// NewService creates the service. rules become the default policy for
// requests that carry none; store may be nil.
func NewService(cfg *config.PolicyAPIConfig, rules []types.RuleConfig, store *db.Store, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{cfg: cfg, store: store, logger: logger}
	if rules != nil {
		eng, err := naming.New(rules)
		if err != nil {
			return nil, fmt.Errorf("default rules: %w", err)
		}
		s.engine = eng
		s.digest = lint.RulesDigest(rules)
	}
	return s, nil
}

// engineFor returns the engine for a request: its own rules when present,
// the server default otherwise.
func (s *Service) engineFor(raw json.RawMessage) (*naming.Engine, string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if s.engine == nil {
			return nil, "", errNoRules
		}
		return s.engine, s.digest, nil
	}

	rules, err := config.ParseRules(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := config.ValidateRules(rules); err != nil {
		return nil, "", err
	}
	eng, err := naming.New(rules)
	if err != nil {
		return nil, "", err
	}
	return eng, lint.RulesDigest(rules), nil
}

// decode converts a Struct request into dst, rejecting unknown fields.
func decode(in *structpb.Struct, dst interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// encode converts a response value into a Struct via its JSON form.
func encode(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
