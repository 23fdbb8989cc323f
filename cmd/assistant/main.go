// Gray Logic Assistant - voice assistant gateway for the Gray Logic platform.
//
// The assistant service sits between a cloud voice assistant and the home
// bus. It answers the smart-home fulfillment webhook (device discovery,
// state queries, command execution), keeps an entity registry in SQLite,
// dispatches resolved commands over MQTT, and streams state changes to
// dashboards over WebSocket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/nerrad567/gray-logic-assistant/migrations"

	"github.com/nerrad567/gray-logic-assistant/internal/api"
	"github.com/nerrad567/gray-logic-assistant/internal/assistant"
	"github.com/nerrad567/gray-logic-assistant/internal/dispatch"
	"github.com/nerrad567/gray-logic-assistant/internal/entity"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/mqtt"
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

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Assistant",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database and run migrations
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise entity registry
	repo := entity.NewSQLiteRepository(db.DB)
	registry := entity.NewRegistry(repo)
	registry.SetLogger(log)

	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading entity registry: %w", refreshErr)
	}
	log.Info("entity registry initialised", "entities", registry.Count())

	// Connect to MQTT broker
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
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional audit trail)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the translation and dispatch pipeline
	translator := assistant.New()
	translator.SetLogger(log)

	execOpts := []dispatch.Option{dispatch.WithLogger(log)}
	if influxClient != nil {
		execOpts = append(execOpts, dispatch.WithAudit(influxClient))
	}
	executor := dispatch.NewExecutor(mqttClient, byte(cfg.MQTT.QoS), execOpts...)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Agent:      cfg.Agent,
		Logger:     log,
		Registry:   registry,
		Translator: translator,
		Executor:   executor,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Fan committed state changes out to the WebSocket hub and audit trail.
	registry.SetStateListener(func(snap entity.Snapshot) {
		server.Hub().Broadcast(api.ChannelEntityState, snap)
		if influxClient != nil {
			influxClient.WriteStateChange(snap.EntityID, snap.Domain(), snap.State)
		}
	})

	// Subscribe to entity state updates from the bridges
	if err := subscribeEntityStates(mqttClient, registry, log); err != nil {
		return fmt.Errorf("subscribing to entity states: %w", err)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Gray Logic Assistant stopped")
	return nil
}

// stateMessage is the payload bridges publish on entity state topics.
type stateMessage struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// subscribeEntityStates wires bridge state publications into the registry.
//
// Topic shape: assistant/entity/{entity_id}/state. Updates for entities the
// registry does not know are logged and dropped; the registry is the
// authority on which entities exist.
func subscribeEntityStates(client *mqtt.Client, registry *entity.Registry, log *logging.Logger) error {
	topic := mqtt.Topics{}.AllEntityStates()
	log.Info("subscribing to entity state updates", "topic", topic)

	return client.Subscribe(topic, 1, func(t string, payload []byte) error {
		entityID := entityIDFromTopic(t)
		if entityID == "" {
			log.Warn("state update on unparseable topic", "topic", t)
			return nil
		}

		var msg stateMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("malformed state payload", "topic", t, "error", err)
			return nil
		}
		if msg.State == "" {
			log.Warn("state payload missing state", "entity_id", entityID)
			return nil
		}

		if err := registry.SetState(context.Background(), entityID, msg.State, msg.Attributes); err != nil {
			log.Warn("state update rejected", "entity_id", entityID, "error", err)
		}
		return nil
	})
}

// entityIDFromTopic extracts the entity ID from an entity state topic.
func entityIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != mqtt.TopicPrefix || parts[1] != "entity" || parts[3] != "state" {
		return ""
	}
	return parts[2]
}

// getConfigPath returns the configuration file path.
// Uses ASSISTANT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ASSISTANT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
