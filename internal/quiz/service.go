package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Generator is the external generation provider. It returns the decoded
// response body untouched; validation happens in Service.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Cache stores validated quizzes (implemented by the Redis-backed Cache).
type Cache interface {
	Get(ctx context.Context, req Request) ([]Question, error)
	Set(ctx context.Context, req Request, questions []Question) error
}

// Outcome labels used for generation metrics.
const (
	OutcomeOK                = "ok"
	OutcomeCached            = "cached"
	OutcomeNetworkFailure    = "network_failure"
	OutcomeContractViolation = "contract_violation"
)

// OutcomeRecorder counts generation outcomes and provider latency (implemented by metrics).
type OutcomeRecorder interface {
	GenerationOutcome(outcome string)
	ObserveGeneration(d time.Duration)
}

// ServiceOptions wires optional collaborators.
type ServiceOptions struct {
	Cache   Cache
	Metrics OutcomeRecorder
}

// Service turns a request into a validated question batch.
type Service struct {
	generator Generator
	cache     Cache
	metrics   OutcomeRecorder
	logger    zerolog.Logger
}

var _ QuestionSource = (*Service)(nil)

func NewService(generator Generator, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

// GenerateFor builds the request from raw input and generates it.
func (s *Service) GenerateFor(ctx context.Context, topic string, level int) (Request, []Question, error) {
	req, err := Build(topic, level)
	if err != nil {
		return Request{}, nil, err
	}
	questions, err := s.Generate(ctx, req)
	return req, questions, err
}

// Generate returns a validated batch, served from cache when possible.
func (s *Service) Generate(ctx context.Context, req Request) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, req); err != nil {
			s.logger.Warn().Err(err).Str("topic", req.Topic).Msg("quiz cache read failed")
		} else if len(cached) == req.ExpectedCount {
			s.record(OutcomeCached)
			return cached, nil
		}
	}

	if s.generator == nil {
		s.record(OutcomeNetworkFailure)
		return nil, fmt.Errorf("%w: generator not configured", ErrNetworkFailure)
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start))
	}
	if err != nil {
		if errors.Is(err, ErrContractViolation) {
			s.record(OutcomeContractViolation)
			return nil, err
		}
		s.record(OutcomeNetworkFailure)
		if errors.Is(err, ErrNetworkFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}

	questions, err := Validate(req, raw)
	if err != nil {
		s.record(OutcomeContractViolation)
		s.logger.Warn().Err(err).
			Str("topic", req.Topic).
			Int("level", int(req.Level)).
			Msg("generation result rejected")
		return nil, err
	}
	s.record(OutcomeOK)

	if s.cache != nil {
		if err := s.cache.Set(ctx, req, questions); err != nil {
			s.logger.Warn().Err(err).Msg("quiz cache write failed")
		}
	}
	return questions, nil
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.GenerationOutcome(outcome)
	}
}
