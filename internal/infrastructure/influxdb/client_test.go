package influxdb_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/influxdb"
)

const testNodeID = "node-test"

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "graylogic-dev-token",
		Org:           "graylogic",
		Bucket:        "node",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		client, err := influxdb.Connect(testConfig(), testNodeID)
		if err != nil {
			t.Skip("InfluxDB not available, skipping integration test")
		}
		client.Close()
	}
}

// connectWithErrors connects and records the last async write error.
func connectWithErrors(t *testing.T) (*influxdb.Client, func() error) {
	t.Helper()
	client, err := influxdb.Connect(testConfig(), testNodeID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	var (
		mu       sync.Mutex
		writeErr error
	)
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	return client, func() error {
		client.Flush()
		time.Sleep(100 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}
}

func TestConnect(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig(), testNodeID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg, testNodeID)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := influxdb.Connect(cfg, testNodeID)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestHealthCheck(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig(), testNodeID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_AfterClose(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig(), testNodeID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWriteTraitState(t *testing.T) {
	skipIfNoInfluxDB(t)
	client, flush := connectWithErrors(t)

	client.WriteTraitState("light", "test_lamp", "state", true)
	client.WriteTraitState("light", "test_lamp", "brightness", 128)
	client.WriteTraitState("light", "test_lamp", "color", "255,0,64")

	if err := flush(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWriteSensorValue(t *testing.T) {
	skipIfNoInfluxDB(t)
	client, flush := connectWithErrors(t)

	client.WriteSensorValue("test_uptime", "3600")
	client.WriteSensorValue("test_status", "idle")

	if err := flush(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWriteTagScan(t *testing.T) {
	skipIfNoInfluxDB(t)
	client, flush := connectWithErrors(t)

	client.WriteTagScan("test_reader", "04a2249a")

	if err := flush(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestClose(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig(), testNodeID)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	client.WriteTraitState("switch", "close_test", "state", false)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}

	// Writes and flushes after close are no-ops.
	client.WriteTraitState("switch", "close_test", "state", true)
	client.Flush()
}
