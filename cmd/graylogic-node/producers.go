package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/ha"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/loop"
)

// sample reads the current value of a sensor source.
func sample(b sensorBinding, start time.Time) string {
	switch b.source {
	case config.SourceUptime:
		return strconv.FormatInt(int64(time.Since(start)/time.Second), 10)
	case config.SourceHeap:
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return strconv.FormatUint(ms.HeapAlloc, 10)
	default:
		return b.value
	}
}

// updateSensors samples every sensor and publishes changed values. It must
// run on the loop. Publish failures while disconnected are expected; the
// next sample after reconnect catches up.
func updateSensors(sensors []sensorBinding, start time.Time, log *logging.Logger) {
	for _, b := range sensors {
		if err := b.sensor.SetValue(sample(b, start), false); err != nil {
			log.Debug("sensor update failed", "unique_id", b.sensor.UniqueID(), "error", err)
		}
	}
}

// onConnected runs on the loop after every connect: announce the node,
// then refresh sensor values. Sensors are refreshed even when the
// announcement fails.
func onConnected(node *ha.Node, sensors []sensorBinding, start time.Time, log *logging.Logger) error {
	err := node.HandleConnected()
	updateSensors(sensors, start, log)
	return err
}

// runSensors posts a sensor update onto the loop every interval until ctx
// is done. A tick is skipped when the loop queue is full.
func runSensors(ctx context.Context, lp *loop.Loop, sensors []sensorBinding, start time.Time, interval time.Duration, log *logging.Logger) {
	if len(sensors) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := lp.TryPost(func() { updateSensors(sensors, start, log) })
			if errors.Is(err, loop.ErrStopped) {
				return
			}
			if err != nil {
				log.Warn("sensor tick skipped", "error", err)
			}
		}
	}
}

// readInputs reads local input events from r, one per line, until EOF or
// ctx is done:
//
//	<tag>                 scan on the first tag scanner
//	<unique_id> <tag>     scan on the named tag scanner
//	<unique_id> ON|OFF    set the named binary sensor
//
// Blank lines and unknown ids are ignored.
func readInputs(ctx context.Context, r io.Reader, lp *loop.Loop, set *entitySet, sink telemetry, log *logging.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		apply := set.inputAction(line, sink)
		if apply == nil {
			log.Debug("input ignored", "line", line)
			continue
		}
		if err := lp.Call(ctx, apply); err != nil {
			if errors.Is(err, loop.ErrStopped) || ctx.Err() != nil {
				return nil
			}
			log.Warn("input not applied", "line", line, "error", err)
		}
	}
	return scanner.Err()
}

// inputAction resolves one input line to the entity operation it triggers,
// or nil when nothing matches.
func (s *entitySet) inputAction(line string, sink telemetry) func() error {
	id, value, found := strings.Cut(line, " ")
	if !found {
		if len(s.tags) == 0 {
			return nil
		}
		return scanAction(s.tags[0], line, sink)
	}
	value = strings.TrimSpace(value)

	if t := s.tagScanner(id); t != nil {
		return scanAction(t, value, sink)
	}
	for _, b := range s.binary {
		if b.UniqueID() == id {
			return func() error { return b.SetState(value == ha.PayloadOn, false) }
		}
	}
	return nil
}

func scanAction(t *ha.TagScanner, tag string, sink telemetry) func() error {
	return func() error {
		if err := t.TagScanned(tag); err != nil {
			return err
		}
		if sink != nil {
			sink.WriteTagScan(t.UniqueID(), tag)
		}
		return nil
	}
}
