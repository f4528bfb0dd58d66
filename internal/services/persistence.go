package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// Persistence mirrors the alarm configuration into storage: it loads the
// persisted state at boot and writes the alarm list back after every
// change. Register it before the reconciler so the stored state is durable
// by the time jobs are rebuilt.
type Persistence struct {
	store ports.Storage
	cfg   *domain.Config
	log   *slog.Logger
}

func NewPersistence(store ports.Storage, cfg *domain.Config, log *slog.Logger) *Persistence {
	if log == nil {
		log = slog.Default()
	}
	return &Persistence{store: store, cfg: cfg, log: log}
}

// Load populates the configuration from storage and installs the
// write-back hook.
func (p *Persistence) Load(ctx context.Context) error {
	streams, err := p.store.ListStreams(ctx)
	if err != nil {
		return fmt.Errorf("failed to load streams: %w", err)
	}
	for _, stream := range streams {
		p.cfg.AddAudioStream(stream)
	}

	alarms, err := p.store.ListAlarms(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alarms: %w", err)
	}
	for _, alarm := range alarms {
		p.cfg.AddAlarmDefinition(alarm)
	}
	p.log.Info("configuration loaded", "alarms", len(alarms), "streams", len(streams))

	p.cfg.OnChange(p.sync)
	return nil
}

// sync rewrites the alarm table to match the configuration. The list is a
// handful of rows at most, so full replacement beats change tracking.
func (p *Persistence) sync() {
	ctx := context.Background()

	stored, err := p.store.ListAlarms(ctx)
	if err != nil {
		p.log.Error("failed to read persisted alarms", "error", err)
		return
	}
	current := p.cfg.AlarmDefinitions()

	ids := make(map[int]bool, len(current))
	for _, alarm := range current {
		ids[*alarm.ID] = true
		if err := p.store.SaveAlarm(ctx, alarm); err != nil {
			p.log.Error("failed to persist alarm", "id", *alarm.ID, "error", err)
		}
	}
	for _, alarm := range stored {
		if !ids[*alarm.ID] {
			if err := p.store.DeleteAlarm(ctx, *alarm.ID); err != nil {
				p.log.Error("failed to delete persisted alarm", "id", *alarm.ID, "error", err)
			}
		}
	}
}

// SaveStream persists a stream addition made at runtime.
func (p *Persistence) SaveStream(ctx context.Context, stream domain.AudioStream) error {
	return p.store.SaveStream(ctx, stream)
}

// DeleteStream removes a persisted stream.
func (p *Persistence) DeleteStream(ctx context.Context, id int) error {
	return p.store.DeleteStream(ctx, id)
}
