package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
)

// publish is fire-and-report: the store write already happened, so a
// broker failure is logged and counted but never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
		metrics.RecordEventFailure(topic)
	}
}
