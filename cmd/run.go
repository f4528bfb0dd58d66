package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilmanv/piwake/internal/adapters/geo"
	"github.com/tilmanv/piwake/internal/adapters/gpio"
	"github.com/tilmanv/piwake/internal/adapters/mqtt"
	"github.com/tilmanv/piwake/internal/adapters/notification"
	"github.com/tilmanv/piwake/internal/adapters/panel"
	"github.com/tilmanv/piwake/internal/adapters/playback"
	"github.com/tilmanv/piwake/internal/adapters/schedule"
	"github.com/tilmanv/piwake/internal/adapters/sensor"
	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
	"github.com/tilmanv/piwake/internal/services"
)

// runClock starts the alarm clock daemon and blocks until interrupted.
func runClock(cmd *cobra.Command, args []string) error {
	ctx := setupSignalHandler()

	scheduler := schedule.New(logger, nil)
	defer scheduler.Stop()

	player := playback.New(appConfig.Audio.MediaDir, clockConfig.Settings.DefaultVolume, logger)
	defer player.Stop()

	probe := geo.NewProbe()
	notifier := notification.New(appConfig.Notifications.Enabled)

	reconciler := services.NewReconciler(
		clockConfig, scheduler, player, probe, notifier, events, logger, nil, nil)

	editor := domain.NewAlarmEditor(clockConfig, nil, logger)
	machine := domain.NewModeMachine(editor, logger)
	coordinator := services.NewCoordinator(
		machine, editor, clockConfig, player, scheduler, reconciler, events, logger, nil)

	housekeeping := services.NewHousekeeping(
		scheduler, probe, resolveAlmanac(ctx), events, logger, nil)

	telemetry, closeTelemetry, err := setupTelemetry()
	if err != nil {
		return err
	}
	if closeTelemetry != nil {
		defer closeTelemetry()
	}

	reconciler.Start()
	if err := housekeeping.Start(); err != nil {
		logger.Warn("housekeeping start failed", "error", err)
	}
	coordinator.Ready()

	if telemetry != nil {
		telemetry.PublishLifecycle("startup", time.Now())
		defer telemetry.PublishLifecycle("shutdown", time.Now())
	}

	logger.Info("piwake started",
		"alarms", len(clockConfig.AlarmDefinitions()),
		"streams", len(clockConfig.AudioStreams()),
		"panel", panelMode)

	if panelMode {
		return runPanel(ctx, coordinator, reconciler)
	}
	return runGPIO(ctx, coordinator)
}

// runPanel drives the clock from a terminal UI instead of the hardware
// front panel.
func runPanel(ctx context.Context, coordinator *services.Coordinator, reconciler *services.Reconciler) error {
	model := panel.NewModel(coordinator, reconciler, sensor.NewIIOBrightness(), clockConfig, nil)
	p := panel.New(model, events)
	return p.Run(ctx)
}

// runGPIO listens on the front panel lines until the context is cancelled.
func runGPIO(ctx context.Context, coordinator *services.Coordinator) error {
	input, err := gpio.NewRealInput()
	if err != nil {
		return fmt.Errorf("failed to open gpio: %w", err)
	}
	defer input.Close()

	err = input.Start(func(trigger domain.HardwareTrigger) {
		if err := coordinator.HandleHardware(trigger); err != nil {
			logger.Warn("input rejected", "trigger", string(trigger), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start gpio input: %w", err)
	}

	<-ctx.Done()
	logger.Info("piwake stopping")
	return nil
}

// resolveAlmanac builds the sunrise almanac from the configured location,
// falling back to IP geolocation. Returns nil when no location can be
// determined; sun events are skipped then.
func resolveAlmanac(ctx context.Context) ports.Almanac {
	if appConfig.HasLocation() {
		return geo.NewAlmanac(geo.Location{
			Latitude:  appConfig.Location.Latitude,
			Longitude: appConfig.Location.Longitude,
		})
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	loc, err := geo.Locate(lookupCtx)
	if err != nil {
		logger.Warn("geolocation failed, sun events disabled", "error", err)
		return nil
	}
	logger.Info("location resolved", "lat", loc.Latitude, "lon", loc.Longitude)
	return geo.NewAlmanac(loc)
}

// setupTelemetry connects the MQTT bridge when a broker is configured.
func setupTelemetry() (*mqtt.Telemetry, func(), error) {
	brokerURL := appConfig.Broker.URL
	if brokerFlag != "" {
		brokerURL = brokerFlag
	}
	if brokerURL == "" {
		return nil, nil, nil
	}

	pub, err := mqtt.NewRealPublisher(brokerURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to broker %s: %w", brokerURL, err)
	}
	telemetry := mqtt.NewTelemetry(pub, events, logger)
	return telemetry, func() { pub.Close() }, nil
}
