package ports

import (
	"context"

	"github.com/tilmanv/piwake/internal/domain"
)

// Storage persists alarm definitions and audio streams across restarts.
type Storage interface {
	SaveAlarm(ctx context.Context, alarm *domain.AlarmDefinition) error
	ListAlarms(ctx context.Context) ([]*domain.AlarmDefinition, error)
	DeleteAlarm(ctx context.Context, id int) error

	SaveStream(ctx context.Context, stream domain.AudioStream) error
	ListStreams(ctx context.Context) ([]domain.AudioStream, error)
	DeleteStream(ctx context.Context, id int) error

	Close() error
}
