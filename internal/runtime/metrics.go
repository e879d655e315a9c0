package runtime

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	utterances    metric.Int64Counter
	commands      metric.Int64Counter
	questions     metric.Int64Counter
	confirmations metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter("sottod")

	utterances, err := meter.Int64Counter("sottod.utterances",
		metric.WithDescription("Finished utterances handed to ASR"))
	if err != nil {
		return nil, err
	}
	commands, err := meter.Int64Counter("sottod.commands",
		metric.WithDescription("Transcripts routed as commands"))
	if err != nil {
		return nil, err
	}
	questions, err := meter.Int64Counter("sottod.questions",
		metric.WithDescription("Transcripts routed as questions"))
	if err != nil {
		return nil, err
	}
	confirmations, err := meter.Int64Counter("sottod.confirmations",
		metric.WithDescription("Confirmation outcomes by kind"))
	if err != nil {
		return nil, err
	}

	return &metrics{
		utterances:    utterances,
		commands:      commands,
		questions:     questions,
		confirmations: confirmations,
	}, nil
}

func (m *metrics) Utterance(ctx context.Context) {
	if m != nil {
		m.utterances.Add(ctx, 1)
	}
}

func (m *metrics) Command(ctx context.Context) {
	if m != nil {
		m.commands.Add(ctx, 1)
	}
}

func (m *metrics) Question(ctx context.Context) {
	if m != nil {
		m.questions.Add(ctx, 1)
	}
}

func (m *metrics) Confirmation(ctx context.Context, outcome string) {
	if m != nil {
		m.confirmations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
