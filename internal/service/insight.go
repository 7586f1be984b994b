package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"sheetdash/internal/analytics"
	"sheetdash/internal/model"
	"sheetdash/internal/narrator"
)

// WarningUnavailable is set on an Insight when the narrator could not be reached.
const WarningUnavailable = "AI insights temporarily unavailable"

// Insight is the narrated summary of one upload. Metrics may be empty when no column is numeric.
type Insight struct {
	Insight     string                            `json:"insight"`
	Columns     []string                          `json:"columns"`
	ColumnTypes map[string]model.ScalarKind       `json:"columnTypes"`
	Metrics     map[string]analytics.ColumnMetric `json:"metrics"`
	Warning     string                            `json:"warning,omitempty"`
}

// InsightService produces per-column metrics and a narrated summary for one upload.
type InsightService interface {
	Generate(ctx context.Context, actor model.Actor, uploadID string) (*Insight, error)
}

type insightService struct {
	files    UploadService
	narrator narrator.Narrator
}

// NewInsightService constructs a new InsightService.
func NewInsightService(files UploadService, n narrator.Narrator) InsightService {
	return &insightService{files: files, narrator: n}
}

func (s *insightService) Generate(ctx context.Context, actor model.Actor, uploadID string) (*Insight, error) {
	ctx, span := tracer.Start(ctx, "InsightService.Generate")
	defer span.End()

	rec, err := s.files.Get(ctx, actor, uploadID)
	if err != nil {
		return nil, err
	}

	metrics := analytics.ColumnMetrics(rec.Rows)
	if metrics == nil {
		return nil, ErrEmptyInput
	}
	span.SetAttributes(attribute.Int("insight.columns", len(metrics)))

	out := &Insight{
		Columns:     rec.Columns,
		ColumnTypes: rec.ColumnTypes,
		Metrics:     metrics,
	}
	text, err := s.narrator.Narrate(ctx, analytics.Prompt(metrics))
	if err != nil {
		if !errors.Is(err, narrator.ErrDependencyUnavailable) {
			return nil, fmt.Errorf("narrate: %w", err)
		}
		slog.WarnContext(ctx, "insight degraded", "upload_id", uploadID, "error_message", err.Error())
		span.SetAttributes(attribute.Bool("insight.degraded", true))
		out.Warning = WarningUnavailable
		return out, nil
	}
	out.Insight = text
	return out, nil
}
