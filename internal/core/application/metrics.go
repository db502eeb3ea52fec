package application

import (
	"context"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/arkade-os/nftbridge/internal/core/application"

type spokeMetrics struct {
	attrs      metric.MeasurementOption
	intents    metric.Int64Counter
	relays     metric.Int64Counter
	challenges metric.Int64Counter
	frauds     metric.Int64Counter
	claims     metric.Int64Counter
	slashed    metric.Int64Counter
}

func newSpokeMetrics(spokeID string, side domain.Side) (*spokeMetrics, error) {
	meter := otel.Meter(meterName)

	intents, err := meter.Int64Counter(
		"bridge.intents", metric.WithDescription("Transfer intents added to outgoing blocks"),
	)
	if err != nil {
		return nil, err
	}
	relays, err := meter.Int64Counter(
		"bridge.relays", metric.WithDescription("Roots relayed to the spoke"),
	)
	if err != nil {
		return nil, err
	}
	challenges, err := meter.Int64Counter(
		"bridge.challenges", metric.WithDescription("Challenges opened against relayed roots"),
	)
	if err != nil {
		return nil, err
	}
	frauds, err := meter.Int64Counter(
		"bridge.frauds", metric.WithDescription("Relayed roots proven fraudulent"),
	)
	if err != nil {
		return nil, err
	}
	claims, err := meter.Int64Counter(
		"bridge.claims", metric.WithDescription("Assets claimed from incoming blocks"),
	)
	if err != nil {
		return nil, err
	}
	slashed, err := meter.Int64Counter(
		"bridge.slashed", metric.WithDescription("Bond forfeited by malicious relayers"),
	)
	if err != nil {
		return nil, err
	}

	return &spokeMetrics{
		attrs: metric.WithAttributes(
			attribute.String("spoke_id", spokeID),
			attribute.String("side", side.String()),
		),
		intents:    intents,
		relays:     relays,
		challenges: challenges,
		frauds:     frauds,
		claims:     claims,
		slashed:    slashed,
	}, nil
}

func (m *spokeMetrics) add(ctx context.Context, counter metric.Int64Counter, value uint64) {
	counter.Add(ctx, int64(value), m.attrs)
}
