package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/observability"
)

// MCQAggregate holds quiz performance for a course. Attempted is the single
// filtered slice that both the accuracy chart and the attempts table read.
type MCQAggregate struct {
	All       []models.MCQAttemptSummary
	Attempted []models.MCQAttemptSummary
	Available bool
	Degraded  bool
}

// FilterAttempted keeps the chapters with at least one attempt, in input order.
func FilterAttempted(all []models.MCQAttemptSummary) []models.MCQAttemptSummary {
	attempted := make([]models.MCQAttemptSummary, 0, len(all))
	for _, summary := range all {
		if summary.Attempts > 0 {
			attempted = append(attempted, summary)
		}
	}
	return attempted
}

// NewMCQAggregate wraps a backend response.
func NewMCQAggregate(all []models.MCQAttemptSummary) MCQAggregate {
	if all == nil {
		all = []models.MCQAttemptSummary{}
	}
	return MCQAggregate{
		All:       all,
		Attempted: FilterAttempted(all),
		Available: true,
	}
}

func emptyMCQAggregate(available, degraded bool) MCQAggregate {
	return MCQAggregate{
		All:       []models.MCQAttemptSummary{},
		Attempted: []models.MCQAttemptSummary{},
		Available: available,
		Degraded:  degraded,
	}
}

// MCQPerformanceAggregator fetches quiz attempt summaries.
type MCQPerformanceAggregator struct {
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewMCQPerformanceAggregator constructs the aggregator.
func NewMCQPerformanceAggregator(logger zerolog.Logger) *MCQPerformanceAggregator {
	return &MCQPerformanceAggregator{
		logger: logger.With().Str("component", "mcq_aggregator").Logger(),
		tracer: otel.Tracer("github.com/lernix/lernix-web/internal/service/mcq"),
	}
}

// Fetch returns the attempts for courseID. An absent endpoint or a failed
// call yields an empty aggregate; only authentication failures are returned.
func (a *MCQPerformanceAggregator) Fetch(ctx context.Context, src AttemptsSource, courseID int) (MCQAggregate, error) {
	ctx, span := a.tracer.Start(ctx, "insights.mcq_attempts", trace.WithAttributes(
		attribute.Int("course.id", courseID),
	))
	defer span.End()

	result, err := src.MCQAttempts(ctx, courseID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			span.SetStatus(codes.Error, "unauthorized")
			return MCQAggregate{}, err
		}
		span.RecordError(err)
		observability.AttemptsDegraded().WithLabelValues("error").Inc()
		a.logger.Warn().Err(err).Int("course_id", courseID).Msg("mcq attempts unavailable, showing empty state")
		return emptyMCQAggregate(true, true), nil
	}

	if !result.Present {
		observability.AttemptsDegraded().WithLabelValues("absent").Inc()
		a.logger.Debug().Int("course_id", courseID).Msg("mcq attempts endpoint not provided by backend")
		span.SetAttributes(attribute.Bool("mcq.endpoint_present", false))
		return emptyMCQAggregate(false, false), nil
	}

	span.SetAttributes(attribute.Int("mcq.rows", len(result.Value)))
	span.SetStatus(codes.Ok, "fetched")
	return NewMCQAggregate(result.Value), nil
}
