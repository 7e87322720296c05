package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SubjectModelTrained is published once per successful training run
const SubjectModelTrained = "trendcast.model.trained"

// ModelTrainedEvent announces a newly saved model
type ModelTrainedEvent struct {
	RunID      string    `json:"run_id"`
	Indicator  string    `json:"indicator"`
	Handle     string    `json:"handle"`
	Slope      float64   `json:"slope"`
	Intercept  float64   `json:"intercept"`
	Degenerate bool      `json:"degenerate"`
	RMSE       *float64  `json:"rmse,omitempty"` // nil when no test partition was held out
	TrainedAt  time.Time `json:"trained_at"`
}

// PublishModelTrained encodes ev and publishes it on SubjectModelTrained
func PublishModelTrained(ctx context.Context, p Publisher, ev ModelTrainedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal model event: %w", err)
	}
	return p.Publish(ctx, SubjectModelTrained, data)
}

// SubscribeModelTrained decodes events on SubjectModelTrained for handler.
// Undecodable payloads are dropped.
func SubscribeModelTrained(s Subscriber, handler func(ev ModelTrainedEvent) error) error {
	return s.Subscribe(SubjectModelTrained, func(data []byte) error {
		var ev ModelTrainedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil
		}
		return handler(ev)
	})
}
