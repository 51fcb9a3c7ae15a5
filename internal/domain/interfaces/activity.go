package interfaces

//go:generate mockgen -source=activity.go -destination=mocks/mock_activity.go -package=mocks

import (
	"context"

	"ebridge-portal/internal/domain/entity/activity"
)

type EventPublisher interface {
	Publish(ctx context.Context, event activity.Event) error
}

type ActivityRepository interface {
	AddEvents(ctx context.Context, events []activity.Event) error
	Close()
}
