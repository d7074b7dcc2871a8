package insights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// Analyzer is the LLM path: transcript in, raw model output out
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, transcript string) (string, error)
}

// Service turns transcript text into an insight bundle. The LLM path is
// primary; any failure there, including a response that fails validation,
// falls back to deterministic heuristics. Analyze is total for non-empty
// input: the caller always gets a bundle, never an error.
type Service struct {
	llm        Analyzer
	llmTimeout time.Duration
	logger     *zap.Logger
}

// NewService creates an insight service. llm may be nil, in which case only
// the heuristic path runs.
func NewService(llm Analyzer, logger *zap.Logger) *Service {
	return &Service{
		llm:        llm,
		llmTimeout: 30 * time.Second,
		logger:     logger,
	}
}

// Analyze produces an insight bundle for the transcript
func (s *Service) Analyze(ctx context.Context, transcript string) *entities.InsightBundle {
	if bundle := s.tryLLM(ctx, transcript); bundle != nil {
		return bundle
	}
	return HeuristicAnalyze(transcript)
}

func (s *Service) tryLLM(ctx context.Context, transcript string) *entities.InsightBundle {
	if s.llm == nil || transcript == "" {
		return nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	content, err := s.llm.AnalyzeTranscript(llmCtx, transcript)
	if err != nil {
		s.logger.Warn("🧠 LLM analysis failed, falling back to heuristics", zap.Error(err))
		return nil
	}

	bundle, err := ParseBundleResponse(content)
	if err != nil {
		s.logger.Warn("🧠 LLM response failed validation, falling back to heuristics", zap.Error(err))
		return nil
	}

	s.logger.Info("🧠 Insights generated via LLM")
	return bundle
}
