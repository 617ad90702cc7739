// Gray Logic Node - Home Assistant MQTT discovery for a single device
//
// This is the main entry point for the Gray Logic node daemon. The node
// announces the entities declared in its configuration to Home Assistant
// via MQTT discovery, tracks their state, and answers commands:
//   - Lights and switches echo commanded state back (virtual device)
//   - Sensors report uptime, heap usage or a static value
//   - Tag scanners and binary sensors are driven from stdin
//
// All entity state lives on one goroutine (internal/loop); transport
// callbacks and local producers post work onto it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/ha"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqttv5"
	"github.com/nerrad567/gray-logic-node/internal/loop"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// defaultConfigPath is used when neither -config nor the env var is set.
	defaultConfigPath = "configs/config.yaml"

	// configEnvVar overrides the default config path.
	configEnvVar = "GRAYLOGIC_NODE_CONFIG"

	// shutdownTimeout bounds the offline announcement on shutdown.
	shutdownTimeout = 5 * time.Second
)

// transport is what the daemon needs from an MQTT client.
// Both *mqtt.Client and *mqttv5.Client satisfy it.
type transport interface {
	ha.Transport
	Connect(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Close() error
	SetLogger(logger mqtt.Logger)
}

func main() {
	configPath, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags returns the config path from -config, falling back to
// GRAYLOGIC_NODE_CONFIG and then the default.
func parseFlags(args []string) (string, error) {
	def := defaultConfigPath
	if path := os.Getenv(configEnvVar); path != "" {
		def = path
	}

	fs := flag.NewFlagSet("graylogic-node", flag.ContinueOnError)
	path := fs.String("config", def, "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to the YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version).With("node_id", cfg.Node.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	device, err := deviceInfo(cfg.Node, version).Serialize()
	if err != nil {
		return fmt.Errorf("building device descriptor: %w", err)
	}

	set, err := buildEntities(cfg.Entities)
	if err != nil {
		return fmt.Errorf("building entities: %w", err)
	}

	opts := []ha.Option{
		ha.WithTopics(ha.Topics{Prefix: cfg.Discovery.Prefix}),
		ha.WithLogger(log.Component("ha")),
	}
	if cfg.Discovery.SharedAvailability {
		opts = append(opts, ha.WithSharedAvailability(cfg.Node.ID))
	}
	node := ha.NewNode(nil, device, opts...)
	if err := node.Add(set.components...); err != nil {
		return fmt.Errorf("attaching entities: %w", err)
	}
	log.Info("entities registered", "count", len(set.components))

	// Connect to InfluxDB (optional)
	var sink telemetry
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Node.ID)
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
		sink = influxClient
		set.observe(sink)
	} else {
		log.Info("InfluxDB disabled")
	}

	// The loop outlives ctx so shutdown can still announce offline.
	lp := loop.New(loop.DefaultQueueLen)
	lp.SetLogger(log.Component("loop"))
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer func() {
		stopLoop()
		<-lp.Done()
	}()
	go lp.Run(loopCtx)

	start := time.Now()
	tr, err := newTransport(cfg.MQTT, node, lp, set, start, log)
	if err != nil {
		return fmt.Errorf("creating MQTT client: %w", err)
	}
	node.SetTransport(tr)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := tr.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	if err := tr.Connect(ctx); err != nil {
		// The client keeps retrying; discovery runs once it connects.
		log.Warn("MQTT broker not reachable yet", "broker", mqtt.BrokerURL(cfg.MQTT), "error", err)
	} else if err := healthCheck(ctx, tr, influxClient); err != nil {
		log.Warn("health check failed", "error", err)
	} else {
		log.Info("all health checks passed")
	}

	go runSensors(ctx, lp, set.sensors, start, cfg.GetPublishInterval(), log)
	if len(set.tags) > 0 || len(set.binary) > 0 {
		go func() {
			if err := readInputs(ctx, os.Stdin, lp, set, sink, log); err != nil {
				log.Warn("input reader stopped", "error", err)
			}
		}()
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := lp.Call(shutdownCtx, func() error { return node.SetAvailable(false) }); err != nil {
		log.Warn("offline announcement failed", "error", err)
	}

	// Deferred calls run in reverse order:
	// 1. MQTT
	// 2. Loop
	// 3. InfluxDB (if enabled)

	log.Info("Gray Logic Node stopped")
	return nil
}

// newTransport creates the MQTT client for the configured protocol
// version. Its callbacks post onto the loop.
func newTransport(cfg config.MQTTConfig, node *ha.Node, lp *loop.Loop, set *entitySet, start time.Time, log *logging.Logger) (transport, error) {
	var will *mqtt.Will
	if topic := node.WillTopic(); topic != "" {
		will = &mqtt.Will{Topic: topic, Payload: []byte(ha.PayloadOffline)}
	}

	mqttLog := log.Component("mqtt")
	hooks := mqtt.Hooks{
		OnConnect: func() {
			mqttLog.Info("MQTT connected", "broker", mqtt.BrokerURL(cfg))
			err := lp.Post(func() {
				// The node logs each failed step; the next connect retries.
				if err := onConnected(node, set.sensors, start, log); err != nil {
					mqttLog.Debug("connect sequence returned errors", "error", err)
				}
			})
			if err != nil {
				mqttLog.Warn("connect sequence not scheduled", "error", err)
			}
		},
		OnConnectionLost: func(err error) {
			mqttLog.Warn("MQTT disconnected", "error", err)
		},
		OnMessage: func(topic string, payload []byte) error {
			p := append([]byte(nil), payload...)
			return lp.TryPost(func() { node.HandleMessage(topic, p) })
		},
	}

	var tr transport
	switch cfg.ProtocolVersion {
	case 5:
		c, err := mqttv5.NewClient(cfg, will, hooks)
		if err != nil {
			return nil, err
		}
		tr = c
	default:
		tr = mqtt.NewClient(cfg, will, hooks)
	}
	tr.SetLogger(mqttLog)
	return tr, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - tr: MQTT transport to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, tr transport, influxClient *influxdb.Client) error {
	if err := tr.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
