// LoRaWatch Core - LoRaWAN safety device monitor
//
// This is the main entry point for the LoRaWatch Core application.
// It follows ChirpStack integration events over MQTT, keeps the live state
// of every device in the configured application and relays alerts to the
// fleet's audible, ranging and wearable units.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/lorawatch-core/internal/api"
	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/config"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/database"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/logging"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
	"github.com/nerrad567/lorawatch-core/internal/observer"
	"github.com/nerrad567/lorawatch-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// journalTimeout bounds the lifecycle lines written at start and stop.
const journalTimeout = 2 * time.Second

func main() {
	configPath := flag.String("config", getConfigPath(), "Path to config file (or LORAWATCH_CONFIG)")
	issueFor := flag.String("issue-token", "", "Print an API token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the token printed by -issue-token")
	flag.Parse()

	if *issueFor != "" {
		if err := issueToken(os.Stdout, *configPath, *issueFor, *tokenTTL); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, blocks until ctx is cancelled and then
// shuts down in reverse order: API, sweeper, MQTT, pending alert
// fan-outs, ChirpStack, database.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting LoRaWatch Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	// Journal
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", db.Path())

	jrnl := journal.New(db)
	jrnl.SetLogger(log)

	// Device state
	registry := device.NewRegistry(device.WithStalenessWindow(cfg.Monitor.StalenessWindow))
	registry.SetLogger(log)

	notifier := observer.New()
	notifier.SetLogger(log)
	notifier.Register(jrnl)

	// ChirpStack Device API
	chirp, err := directory.Dial(cfg.ChirpStack)
	if err != nil {
		return fmt.Errorf("connecting to ChirpStack: %w", err)
	}
	defer func() {
		log.Info("closing ChirpStack connection")
		if closeErr := chirp.Close(); closeErr != nil {
			log.Error("error closing ChirpStack connection", "error", closeErr)
		}
	}()
	chirp.SetLogger(log)

	manager := monitor.NewManager(registry, chirp, notifier, monitor.ManagerConfig{
		ApplicationID: cfg.ChirpStack.ApplicationID,
		Confirmed:     cfg.ChirpStack.Downlink.Confirmed,
		FPort:         cfg.ChirpStack.Downlink.FPort,
		Timeout:       cfg.ChirpStackTimeout(),
	})
	manager.SetLogger(log)

	// A failed initial load leaves the registry empty; POST /devices/refresh retries.
	if loaded, refreshErr := manager.Refresh(ctx); refreshErr != nil {
		log.Error("initial device load failed", "error", refreshErr)
	} else {
		log.Info("device registry initialised", "devices", loaded)
	}

	fanOut := monitor.NewFanOut(registry, chirp, notifier, monitor.FanOutConfig{
		Classes:     alertClasses(cfg.Monitor.AlertClasses),
		Confirmed:   cfg.ChirpStack.Downlink.Confirmed,
		FPort:       cfg.ChirpStack.Downlink.FPort,
		Concurrency: cfg.Monitor.FanOutConcurrency,
		Timeout:     cfg.ChirpStackTimeout() * 3,
	})
	fanOut.SetLogger(log)
	defer func() {
		log.Info("waiting for alert fan-outs")
		fanOut.Wait()
	}()

	dispatcher := monitor.NewDispatcher(registry, notifier, fanOut, cfg.Monitor.AlertKeyword)
	dispatcher.SetLogger(log)

	// MQTT
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	publisher := monitor.NewStatePublisher(mqttClient)
	publisher.SetLogger(log)
	pubCtx, stopPublisher := context.WithCancel(ctx)
	go publisher.Run(pubCtx)
	unregisterPublisher := notifier.Register(publisher)
	defer func() {
		unregisterPublisher()
		stopPublisher()
	}()

	if subErr := mqttClient.Subscribe(cfg.MQTT.EventTopic, byte(cfg.MQTT.QoS), dispatcher.HandleMessage); subErr != nil {
		return fmt.Errorf("subscribing to %s: %w", cfg.MQTT.EventTopic, subErr)
	}
	log.Info("listening for ChirpStack events", "topic", cfg.MQTT.EventTopic)

	// Staleness sweeper
	sweeper := monitor.NewSweeper(registry, notifier, cfg.Monitor.SweepInterval)
	sweeper.SetLogger(log)
	sweeper.Start(ctx)
	defer func() {
		log.Info("stopping sweeper")
		sweeper.Stop()
	}()

	// Operator API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Registry: registry,
		Operator: manager,
		Logs:     jrnl,
		Notifier: notifier,
		Checks: map[string]api.HealthChecker{
			"database":   db,
			"mqtt":       mqttClient,
			"chirpstack": chirp,
		},
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	if cfg.Security.JWT.Secret == "" {
		log.Warn("API authentication disabled: security.jwt.secret is empty")
	}

	recordLifecycle(jrnl, log, "Application started")
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	recordLifecycle(jrnl, log, "Application closed")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LORAWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LORAWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// alertClasses converts configured class names. Empty means the defaults.
func alertClasses(names []string) []device.Class {
	classes := make([]device.Class, 0, len(names))
	for _, n := range names {
		if c := device.ParseClass(n); c != device.ClassUnknown {
			classes = append(classes, c)
		}
	}
	return classes
}

func recordLifecycle(jrnl *journal.Journal, log *logging.Logger, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if _, err := jrnl.Record(ctx, journal.KindEvent, "", message); err != nil {
		log.Warn("journal write failed", "message", message, "error", err)
	}
}

// issueToken prints a signed API token using the configured JWT secret.
func issueToken(w io.Writer, configPath, subject string, ttl time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	token, err := api.IssueToken(cfg.Security.JWT.Secret, subject, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
