// internal/recommendation/events.go
package recommendation

import (
	"context"
	"time"

	"college-fit-workers/internal/models"
)

const EventRecommendationsGenerated = "recommendations.generated"

// GeneratedEvent is published after a list has been generated.
type GeneratedEvent struct {
	Event       string                     `json:"event"`
	RunID       string                     `json:"runId"`
	UserID      string                     `json:"userId"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Persisted   bool                       `json:"persisted"`
	Stats       models.RecommendationStats `json:"stats"`
}

type Publisher interface {
	PublishGenerated(ctx context.Context, event GeneratedEvent) error
}

type NopPublisher struct{}

func (NopPublisher) PublishGenerated(context.Context, GeneratedEvent) error { return nil }

// JSONPublisher is satisfied by aws.SNSClient.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, topicARN, subject string, payload interface{}, attributes map[string]string) (string, error)
}

// SNSPublisher sends generation events to an SNS topic.
type SNSPublisher struct {
	client   JSONPublisher
	topicARN string
}

func NewSNSPublisher(client JSONPublisher, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) PublishGenerated(ctx context.Context, event GeneratedEvent) error {
	event.Event = EventRecommendationsGenerated
	_, err := p.client.PublishJSON(ctx, p.topicARN, "Recommendations generated", event, map[string]string{
		"event":  EventRecommendationsGenerated,
		"userId": event.UserID,
	})
	return err
}
