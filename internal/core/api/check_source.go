package api

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/namekeeper/internal/core/auth"
	"github.com/solatis/namekeeper/internal/core/db"
	"github.com/solatis/namekeeper/internal/lint"
	"github.com/solatis/namekeeper/internal/report"
)

// checkSourceRequest is the JSON shape of a CheckSource Struct:
//
//	{"path": "src/app.ts", "source": "...", "rules": [...], "record": true}
//
// path selects the grammar and labels diagnostics. record stores the run
// when the server has a database.
type checkSourceRequest struct {
	Path   string          `json:"path"`
	Source string          `json:"source"`
	Rules  json.RawMessage `json:"rules"`
	Record bool            `json:"record"`
}

type checkSourceResponse struct {
	Checked    int                 `json:"checked"`
	Violations []report.Diagnostic `json:"violations"`
	RunID      string              `json:"runId,omitempty"`
}

// CheckSource classifies source text and validates every declared name.
func (s *Service) CheckSource(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	started := time.Now()

	var req checkSourceRequest
	if err := decode(in, &req); err != nil {
		return nil, statusFor(ctx, err)
	}

	eng, digest, err := s.engineFor(req.Rules)
	if err != nil {
		return nil, statusFor(ctx, err)
	}

	res, err := lint.Source(ctx, eng, req.Path, []byte(req.Source))
	if err != nil {
		return nil, statusFor(ctx, err)
	}
	report.Sort(res.Diagnostics)

	resp := checkSourceResponse{Checked: res.Names, Violations: res.Diagnostics}
	if resp.Violations == nil {
		resp.Violations = []report.Diagnostic{}
	}

	if req.Record && s.store != nil {
		client := auth.ClientFromContext(ctx)
		runID, err := s.store.RecordRun(ctx, db.Run{
			Client:       client,
			RulesDigest:  digest,
			StartedAt:    started,
			FinishedAt:   time.Now(),
			FilesChecked: 1,
			NamesChecked: res.Names,
		}, res.Diagnostics)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to record run", "client", client, "error", err)
			return nil, statusFor(ctx, errUnavailable{err})
		}
		resp.RunID = string(runID)
		s.logger.InfoContext(ctx, "recorded run", "run_id", runID, "client", client, "violations", len(res.Diagnostics))
	}

	out, err := encode(resp)
	if err != nil {
		return nil, statusFor(ctx, err)
	}
	return out, nil
}
