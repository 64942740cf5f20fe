package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/platform/logging"
)

// ScriptEvaluator runs one strategy source against one player. A nil verdict
// means the strategy did not fire.
type ScriptEvaluator interface {
	Evaluate(ctx context.Context, name, source string, p player.Player) (*decision.Verdict, error)
}

// StrategyService evaluates every script in a directory against a player.
type StrategyService struct {
	dir       string
	evaluator ScriptEvaluator
	logger    *logging.Logger
}

func NewStrategyService(dir string, evaluator ScriptEvaluator, logger *logging.Logger) *StrategyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StrategyService{
		dir:       strings.TrimSpace(dir),
		evaluator: evaluator,
		logger:    logger,
	}
}

// RunAll returns the decisions every strategy produced for p. Players without
// prices or stats are skipped. A failing script is logged and contributes
// nothing; an unreadable directory aborts the whole batch with ErrConfig.
func (s *StrategyService) RunAll(ctx context.Context, p player.Player) ([]decision.Decision, error) {
	if len(p.Prices) == 0 || p.Stats == nil {
		return nil, nil
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.StrategyService.RunAll")
	defer span.End()

	scripts, err := s.listScripts()
	if err != nil {
		s.logger.ErrorContext(ctx, "strategies directory unavailable", "dir", s.dir, "error", err)
		return nil, err
	}

	out := make([]decision.Decision, 0, len(scripts))
	for _, script := range scripts {
		verdict, err := s.runOne(ctx, script, p)
		if err != nil {
			s.logger.WarnContext(ctx, "strategy failed", "strategy", script.name, "slug", p.Slug, "error", err)
			continue
		}
		if verdict == nil {
			continue
		}
		out = append(out, decision.New(*verdict, p.Slug, p.DisplayName, script.name))
	}
	return out, nil
}

type strategyScript struct {
	name string
	path string
}

const scriptExt = ".go"

// listScripts reads the directory on every call so edits apply without restart.
func (s *StrategyService) listScripts() ([]strategyScript, error) {
	if s.dir == "" {
		return nil, errors.Mark(errors.New("strategies directory is not configured"), ErrConfig)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read strategies directory %s", s.dir), ErrConfig)
	}

	out := make([]strategyScript, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || filepath.Ext(name) != scriptExt || !entry.Type().IsRegular() {
			continue
		}
		out = append(out, strategyScript{
			name: strings.TrimSuffix(name, filepath.Ext(name)),
			path: filepath.Join(s.dir, name),
		})
	}
	return out, nil
}

func (s *StrategyService) runOne(ctx context.Context, script strategyScript, p player.Player) (*decision.Verdict, error) {
	source, err := os.ReadFile(script.path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read strategy %s", script.name), ErrScript)
	}
	verdict, err := s.evaluator.Evaluate(ctx, script.name, string(source), p)
	if err != nil {
		return nil, errors.Mark(err, ErrScript)
	}
	return verdict, nil
}
