package planner

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"nutriplan/internal/gemini"
)

const (
	// minResponseLength marks a response body as near-empty. Anything
	// shorter cannot hold a usable payload and counts as a miss.
	minResponseLength = 20

	weeklyMaxOutputTokens       = 8192
	alternativesMaxOutputTokens = 1024

	generationTemperature = 0.4
)

// Service orchestrates plan and alternatives generation. Each call is an
// independent operation: no state is shared between invocations, so
// concurrent calls for different patients or foods need no coordination.
type Service struct {
	model gemini.Model
	log   zerolog.Logger
}

// NewService wires the controller to a model.
func NewService(model gemini.Model, logger zerolog.Logger) *Service {
	return &Service{model: model, log: logger}
}

// GenerateWeeklyPlan produces a complete 7-day plan for the request. One
// model attempt: a transport failure, a length-truncated completion, or a
// near-empty body falls straight through to the deterministic fallback
// without a second call. A parsed result always passes through structural
// validation, which patches missing or malformed days. The returned plan
// is always shape-complete; this method cannot fail.
func (s *Service) GenerateWeeklyPlan(ctx context.Context, req GenerationRequest) WeeklyPlan {
	comp, err := s.model.Generate(ctx, gemini.Request{
		System:          WeeklySystemPrompt,
		Prompt:          BuildWeeklyPlanPrompt(req),
		Temperature:     generationTemperature,
		MaxOutputTokens: weeklyMaxOutputTokens,
		JSONOnly:        true,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Weekly plan model call failed, using fallback")
		return FallbackWeeklyPlan(req)
	}
	if comp.Truncated() || len(strings.TrimSpace(comp.Text)) < minResponseLength {
		s.log.Warn().
			Str("finish_reason", comp.FinishReason).
			Int("length", len(comp.Text)).
			Msg("Weekly plan response truncated or empty, using fallback")
		return FallbackWeeklyPlan(req)
	}

	raw, outcome, err := ExtractJSON(Normalize(comp.Text), ShapeObject)
	if err != nil {
		s.log.Warn().Err(err).Msg("Weekly plan response unparseable, using fallback")
		return FallbackWeeklyPlan(req)
	}

	plan, patched := BuildWeeklyPlan(raw, req)
	s.log.Info().
		Stringer("repair", outcome).
		Int("days_patched", patched).
		Int("prompt_tokens", comp.Usage.PromptTokens).
		Int("output_tokens", comp.Usage.CandidateTokens).
		Msg("Weekly plan generated")
	return plan
}

// GenerateAlternatives produces exactly two substitutes for the request's
// food. Two model tiers run before the deterministic fallback: the full
// prompt first, then a reduced-context prompt that keeps only the
// essential food/allergy/avoid context. The result always has exactly two
// entries; this method cannot fail.
func (s *Service) GenerateAlternatives(ctx context.Context, req AlternativesRequest) []FoodAlternative {
	if alts, ok := s.attemptAlternatives(ctx, req, BuildAlternativesPrompt(req), "primary"); ok {
		return alts
	}
	if alts, ok := s.attemptAlternatives(ctx, req, BuildReducedAlternativesPrompt(req), "reduced"); ok {
		return alts
	}
	s.log.Info().Str("food", req.Food.Name).Msg("All alternative attempts failed, using fallback")
	return FallbackAlternatives(req)
}

// attemptAlternatives runs one model tier through the parse pipeline.
func (s *Service) attemptAlternatives(ctx context.Context, req AlternativesRequest, prompt, tier string) ([]FoodAlternative, bool) {
	comp, err := s.model.Generate(ctx, gemini.Request{
		System:          AlternativesSystemPrompt,
		Prompt:          prompt,
		Temperature:     generationTemperature,
		MaxOutputTokens: alternativesMaxOutputTokens,
		JSONOnly:        true,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tier", tier).Msg("Alternatives model call failed")
		return nil, false
	}
	if comp.Truncated() || len(strings.TrimSpace(comp.Text)) < minResponseLength {
		s.log.Warn().
			Str("tier", tier).
			Str("finish_reason", comp.FinishReason).
			Msg("Alternatives response truncated or empty")
		return nil, false
	}

	raw, outcome, err := ExtractJSON(Normalize(comp.Text), ShapeArray)
	if err != nil {
		s.log.Warn().Err(err).Str("tier", tier).Msg("Alternatives response unparseable")
		return nil, false
	}

	var alts []FoodAlternative
	if err := json.Unmarshal(raw, &alts); err != nil {
		s.log.Warn().Err(err).Str("tier", tier).Msg("Alternatives JSON has unexpected shape")
		return nil, false
	}

	s.log.Info().Str("tier", tier).Stringer("repair", outcome).Msg("Alternatives generated")
	return CoerceAlternatives(alts, req.Food), true
}

// GenerateAlternativesBatch runs independent alternative generations in
// parallel, one goroutine per food. Results keep request order. Individual
// requests cannot fail (each bottoms out in its own fallback), so the
// batch cannot either.
func (s *Service) GenerateAlternativesBatch(ctx context.Context, reqs []AlternativesRequest) [][]FoodAlternative {
	results := make([][]FoodAlternative, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = s.GenerateAlternatives(gCtx, req)
			return nil
		})
	}
	// Subtasks never return an error.
	_ = g.Wait()

	return results
}
