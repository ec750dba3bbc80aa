// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"wakeup/internal/activation"
	"wakeup/internal/analysis"
	"wakeup/internal/audio"
	"wakeup/internal/config"
	"wakeup/internal/dispatch"
	"wakeup/internal/listener"
	applog "wakeup/internal/log"
	"wakeup/internal/observe"
	"wakeup/internal/transport"
	"wakeup/internal/transport/mqtt"
	"wakeup/internal/transport/udp"
	"wakeup/internal/tui"
	"wakeup/internal/wakeword/porcupine"
	"wakeup/pkg/build"
)

// Run executes the command selected by cfg. The listener runs until ctx is
// cancelled or its input ends.
func Run(ctx context.Context, cfg *config.Config) error {
	applog.SetLevel(cfg.EffectiveLogLevel())

	switch cfg.Command {
	case CommandList:
		return listDevices()
	case CommandPick:
		return pickDevice()
	}

	var servers []*http.Server

	// Metrics go to the no-op global provider unless a scrape address is set.
	if cfg.Metrics.Addr != "" {
		_, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceVersion: build.GetBuildFlags().Version,
		})
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				applog.Warnf("Metrics: Shutdown: %v", err)
			}
		}()
		servers = append(servers, &http.Server{Addr: cfg.Metrics.Addr, Handler: observe.Handler()})
	}
	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	classifier, err := porcupine.New(porcupine.Config{
		AccessKey:   cfg.Wake.AccessKey,
		Word:        cfg.Wake.Word,
		Sensitivity: cfg.Wake.Sensitivity,
		ModelPath:   cfg.Wake.ModelPath,
	})
	if err != nil {
		return &listener.StartupError{Op: "wake word", Err: err}
	}
	defer classifier.Close()

	events, eventServers := buildTransports(cfg.Transport)
	defer events.Close()
	servers = append(servers, eventServers...)

	exec := dispatch.NewExec(cfg.Actions, launchFailureHook(metrics))
	defer exec.Wait()

	session, err := listener.NewSession(listener.Options{
		Detector:    analysis.NewDetectorConfig(cfg.Detection),
		Activation:  activation.NewConfig(cfg.Activation),
		SettleDelay: cfg.Activation.SettleDelay,
		Classifier:  classifier,
		Dispatcher:  exec,
		Transport:   events,
		Metrics:     metrics,
	})
	if err != nil {
		return err
	}

	source := buildSource(cfg)
	err = listener.Serve(ctx, func(ctx context.Context) error {
		return session.Run(ctx, source)
	}, servers...)

	if cfg.Recording.Enabled {
		applog.Infof("Recording saved to: %s", cfg.Recording.OutputFile)
	}
	return err
}

// launchFailureHook reports failures from background launches. The
// dispatch call itself was already counted when it returned.
func launchFailureHook(metrics *observe.Metrics) dispatch.ErrorHook {
	return func(call string, err error) {
		applog.Errorf("Dispatch: %s: %v", call, err)
		metrics.RecordLaunchFailure(context.Background(), call)
	}
}

func buildSource(cfg *config.Config) audio.Source {
	var source audio.Source = audio.DeviceSource{
		DeviceID:   cfg.Audio.InputDevice,
		LowLatency: cfg.Audio.LowLatency,
	}
	if cfg.Audio.InputFile != "" {
		source = audio.FileSource{Path: cfg.Audio.InputFile}
	}
	if cfg.Recording.Enabled {
		source = audio.RecordingSource{Source: source, Path: cfg.Recording.OutputFile}
	}
	return source
}

// buildTransports assembles the event fan-out. Event transports are
// optional; one that fails to start is logged and skipped.
func buildTransports(cfg config.TransportConfig) (*transport.Multi, []*http.Server) {
	targets := []transport.Transport{transport.NewLoggingTransport()}
	var servers []*http.Server

	if cfg.WebSocketAddr != "" {
		wst := transport.NewWebSocketTransport()
		targets = append(targets, wst)
		servers = append(servers, &http.Server{Addr: cfg.WebSocketAddr, Handler: wst.Handler()})
	}

	if cfg.UDPTargetAddress != "" {
		if pub, err := udp.NewEventPublisher(cfg.UDPTargetAddress); err != nil {
			applog.Warnf("Transport: UDP disabled: %v", err)
		} else {
			targets = append(targets, pub)
		}
	}

	if cfg.MQTT.Broker != "" {
		t, err := mqtt.NewTransport(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
		})
		if err != nil {
			applog.Warnf("Transport: MQTT disabled: %v", err)
		} else {
			targets = append(targets, t)
		}
	}

	return transport.NewMulti(targets...), servers
}

func pickDevice() error {
	if err := audio.Initialize(); err != nil {
		return &listener.StartupError{Op: "audio", Err: err}
	}
	devices, err := audio.HostDevices()
	audio.Terminate()
	if err != nil {
		return err
	}

	device, ok, err := tui.PickDevice(devices)
	if err != nil || !ok {
		return err
	}
	fmt.Printf("Selected %s. Start with: wakeup --device %d\n", device.Name, device.ID)
	return nil
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return &listener.StartupError{Op: "audio", Err: err}
	}
	defer audio.Terminate()
	return audio.ListDevices(os.Stdout)
}
