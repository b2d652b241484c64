package events

import (
	"context"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/events"
)

// RoutingKeyAnalysisCompleted is the topic for finished analyses
const RoutingKeyAnalysisCompleted = "analysis.completed"

type analysisPublisher struct {
	pub events.Publisher
}

// NewAnalysisPublisher adapts a generic JSON publisher to domain.AnalysisPublisher
func NewAnalysisPublisher(pub events.Publisher) domain.AnalysisPublisher {
	return &analysisPublisher{pub: pub}
}

func (p *analysisPublisher) Publish(ctx context.Context, event domain.AnalysisCompletedEvent) error {
	return p.pub.PublishJSON(ctx, RoutingKeyAnalysisCompleted, event)
}
