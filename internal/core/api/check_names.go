package api

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/namekeeper/internal/core/metrics"
	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/report"
	"github.com/solatis/namekeeper/internal/types"
)

// checkNamesRequest is the JSON shape of a CheckNames Struct:
//
//	{"rules": [...], "names": [{"name": "x", "category": "variable",
//	  "modifiers": ["const"], "types": ["boolean"]}]}
//
// rules is optional. types, when present, is the occurrence's type
// classification; when absent the occurrence has no type information.
type checkNamesRequest struct {
	Rules json.RawMessage `json:"rules"`
	Names []nameSpec      `json:"names"`
}

type nameSpec struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Modifiers []string `json:"modifiers"`
	Types     []string `json:"types"`
}

type nameViolation struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stage     string `json:"stage"`
	MessageID string `json:"messageId"`
	Rule      int    `json:"rule"`
	Message   string `json:"message"`
}

type checkNamesResponse struct {
	Checked    int             `json:"checked"`
	Violations []nameViolation `json:"violations"`
}

// CheckNames validates a batch of caller-described occurrences.
func (s *Service) CheckNames(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	var req checkNamesRequest
	if err := decode(in, &req); err != nil {
		return nil, statusFor(ctx, err)
	}
	if len(req.Names) > s.cfg.MaxBatchSize {
		return nil, statusFor(ctx, fmt.Errorf("%w: batch size %d exceeds maximum of %d names", errBadRequest, len(req.Names), s.cfg.MaxBatchSize))
	}

	occs := make([]naming.Occurrence, len(req.Names))
	for i, spec := range req.Names {
		occ, err := spec.occurrence()
		if err != nil {
			return nil, statusFor(ctx, fmt.Errorf("names[%d]: %w", i, err))
		}
		occs[i] = occ
	}

	eng, _, err := s.engineFor(req.Rules)
	if err != nil {
		return nil, statusFor(ctx, err)
	}

	resp := checkNamesResponse{Checked: len(occs), Violations: []nameViolation{}}
	for i, occ := range occs {
		if ctx.Err() != nil {
			return nil, statusFor(ctx, ctx.Err())
		}
		v, err := eng.Validate(occ)
		if err != nil {
			return nil, statusFor(ctx, fmt.Errorf("names[%d]: %w", i, err))
		}
		if v == nil {
			continue
		}
		metrics.Violations.WithLabelValues(v.Stage.String()).Inc()
		resp.Violations = append(resp.Violations, nameViolation{
			Index:     i,
			Name:      v.OriginalName,
			Category:  v.Category.String(),
			Stage:     v.Stage.String(),
			MessageID: report.MessageID(v),
			Rule:      v.Rule,
			Message:   report.Message(v),
		})
	}
	metrics.NamesChecked.Add(float64(len(occs)))

	s.logger.DebugContext(ctx, "checked names", "count", len(occs), "violations", len(resp.Violations))

	out, err := encode(resp)
	if err != nil {
		return nil, statusFor(ctx, err)
	}
	return out, nil
}

// occurrence resolves the category, modifier and type names into an engine occurrence.
func (n nameSpec) occurrence() (naming.Occurrence, error) {
	if len(n.Name) > types.MaxNameLength {
		return naming.Occurrence{}, fmt.Errorf("%w: %d bytes", types.ErrNameTooLong, len(n.Name))
	}

	cat, ok := naming.ParseSelector(n.Category)
	if !ok || !naming.IsAtomic(cat) {
		return naming.Occurrence{}, fmt.Errorf("%w: %q", types.ErrUnknownSelector, n.Category)
	}

	occ := naming.Occurrence{Category: cat, Name: n.Name}
	for _, name := range n.Modifiers {
		m, ok := naming.ParseModifier(name)
		if !ok {
			return naming.Occurrence{}, fmt.Errorf("%w: %q", types.ErrUnknownModifier, name)
		}
		occ.Modifiers = occ.Modifiers.With(m)
	}

	if n.Types != nil {
		var tc naming.TypeConstraint
		for _, name := range n.Types {
			t, ok := naming.ParseTypeConstraint(name)
			if !ok {
				return naming.Occurrence{}, fmt.Errorf("%w: %q", types.ErrUnknownType, name)
			}
			tc |= t
		}
		occ.TypeOf = func() naming.TypeConstraint { return tc }
	}
	return occ, nil
}
