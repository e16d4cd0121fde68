// Command rotary-dial decodes digits dialed on a pulse telephone dial wired
// to two GPIO pins and reports them to a serial stream, MQTT, and an HTTP
// status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Schop/rotary-dial-test/internal/config"
	"github.com/Schop/rotary-dial-test/internal/dial"
	"github.com/Schop/rotary-dial-test/internal/gpio"
	"github.com/Schop/rotary-dial-test/internal/mqtt"
	"github.com/Schop/rotary-dial-test/internal/ring"
	"github.com/Schop/rotary-dial-test/internal/sink"
	"github.com/Schop/rotary-dial-test/internal/status"
	"github.com/Schop/rotary-dial-test/internal/web"
)

func main() {
	configPath, printState := registerFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := resolveConfig(*configPath, flag.CommandLine)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// registerFlags defines all command-line flags on fs. Apart from config and
// print-state, flags are read back through fs.Visit in resolveConfig, so
// only explicitly-set ones override the config file.
func registerFlags(fs *flag.FlagSet) (configPath *string, printState *bool) {
	configPath = fs.String("config", "", "YAML config file (flags override file values)")
	printState = fs.Bool("print-state", false, "Print current switch states and exit")

	fs.Duration("tick", 25*time.Millisecond, "Tick period for safety timeout and event draining")
	fs.Duration("pulse-debounce", dial.DefaultPulseDebounce, "Debounce window for the pulse switch")
	fs.Duration("shunt-debounce", dial.DefaultShuntDebounce, "Debounce window for the shunt switch")
	fs.Duration("safety-timeout", dial.DefaultSafetyTimeout, "Time since last pulse before a dialing cycle is abandoned")
	fs.Int("pin-pulse", gpio.DefaultPinPulse, "BCM pin number for the pulse switch")
	fs.Int("pin-shunt", gpio.DefaultPinShunt, "BCM pin number for the shunt switch")
	fs.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("off" disables MQTT)`)
	fs.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.String("serial", "", "Serial device for the host text stream (empty to disable)")
	fs.Int("serial-baud", 115200, "Serial baud rate")
	fs.String("http", ":80", "HTTP status address (empty to disable)")
	return configPath, printState
}

// resolveConfig merges the built-in defaults, the optional YAML file, and
// any flags the user set explicitly (highest precedence).
func resolveConfig(path string, fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		if err := applyFlag(&cfg, f); err != nil && visitErr == nil {
			visitErr = err
		}
	})
	if visitErr != nil {
		return config.Config{}, visitErr
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func applyFlag(cfg *config.Config, f *flag.Flag) error {
	get := func() (time.Duration, error) {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return 0, fmt.Errorf("flag -%s: %w", f.Name, err)
		}
		return d, nil
	}
	getInt := func() (int, error) {
		var n int
		if _, err := fmt.Sscanf(f.Value.String(), "%d", &n); err != nil {
			return 0, fmt.Errorf("flag -%s: %w", f.Name, err)
		}
		return n, nil
	}

	switch f.Name {
	case "tick":
		d, err := get()
		if err != nil {
			return err
		}
		cfg.Dial.TickMs = int(d.Milliseconds())
	case "pulse-debounce":
		d, err := get()
		if err != nil {
			return err
		}
		cfg.Dial.PulseDebounceMs = int(d.Milliseconds())
	case "shunt-debounce":
		d, err := get()
		if err != nil {
			return err
		}
		cfg.Dial.ShuntDebounceMs = int(d.Milliseconds())
	case "safety-timeout":
		d, err := get()
		if err != nil {
			return err
		}
		cfg.Dial.SafetyTimeoutMs = int(d.Milliseconds())
	case "heartbeat":
		d, err := get()
		if err != nil {
			return err
		}
		cfg.MQTT.HeartbeatMs = int(d.Milliseconds())
	case "pin-pulse":
		n, err := getInt()
		if err != nil {
			return err
		}
		cfg.Dial.PinPulse = n
	case "pin-shunt":
		n, err := getInt()
		if err != nil {
			return err
		}
		cfg.Dial.PinShunt = n
	case "serial-baud":
		n, err := getInt()
		if err != nil {
			return err
		}
		cfg.Serial.Baud = n
	case "broker":
		cfg.MQTT.Broker = f.Value.String()
	case "serial":
		cfg.Serial.Port = f.Value.String()
	case "http":
		cfg.HTTP.Addr = f.Value.String()
	}
	return nil
}

func run(cfg config.Config, printState bool) error {
	// Initialize GPIO
	watcher, err := gpio.NewRealWatcher(cfg.Dial.PinPulse, cfg.Dial.PinShunt)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	pulse, shunt, err := watcher.Levels()
	if err != nil {
		return fmt.Errorf("read initial levels: %w", err)
	}

	// Print state mode
	if printState {
		fmt.Printf("PULSE: %s, SHUNT: %s\n", pulse, shunt)
		return nil
	}

	log.Printf("rotary dial decoder: pulse pin %d, shunt pin %d", cfg.Dial.PinPulse, cfg.Dial.PinShunt)
	log.Printf("initial switch states: pulse=%s shunt=%s", pulse, shunt)
	if shunt == dial.Low {
		log.Printf("shunt is LOW at startup - dial away from rest or miswired")
	}

	// MQTT is optional; the text/serial sinks work without it.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	brokerShown := ""
	if cfg.MQTT.Broker != "" && cfg.MQTT.Broker != "off" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
		brokerShown = cfg.MQTT.Broker
	}

	sinks := sink.Multi{sink.NewText(os.Stdout)}
	if cfg.Serial.Port != "" {
		serialSink, err := sink.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("init serial: %w", err)
		}
		defer serialSink.Close()
		sinks = append(sinks, serialSink)
		log.Printf("serial sink on %s @ %d baud", cfg.Serial.Port, cfg.Serial.Baud)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:          int64(cfg.Dial.TickMs),
		PulseDebounceMs: int64(cfg.Dial.PulseDebounceMs),
		ShuntDebounceMs: int64(cfg.Dial.ShuntDebounceMs),
		SafetyTimeoutMs: int64(cfg.Dial.SafetyTimeoutMs),
		HeartbeatMs:     int64(cfg.MQTT.HeartbeatMs),
		PinPulse:        cfg.Dial.PinPulse,
		PinShunt:        cfg.Dial.PinShunt,
		Broker:          brokerShown,
		SerialPort:      cfg.Serial.Port,
		HTTPAddr:        cfg.HTTP.Addr,
	})

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	tickPeriod := time.Duration(cfg.Dial.TickMs) * time.Millisecond
	log.Printf("started: tick=%v debounce=%dms/%dms safety=%dms",
		tickPeriod, cfg.Dial.PulseDebounceMs, cfg.Dial.ShuntDebounceMs, cfg.Dial.SafetyTimeoutMs)

	conditioner := dial.NewConditioner(
		time.Duration(cfg.Dial.PulseDebounceMs)*time.Millisecond,
		time.Duration(cfg.Dial.ShuntDebounceMs)*time.Millisecond)
	conditioner.Seed(pulse, shunt)
	decoder := dial.NewDecoder(time.Duration(cfg.Dial.SafetyTimeoutMs) * time.Millisecond)
	events := ring.New(ring.DefaultCapacity)

	decodeTicker := time.NewTicker(tickPeriod)
	defer decodeTicker.Stop()
	go decodeLoop(watcher.Samples(), decodeTicker.C, conditioner, decoder, events)

	drainTicker := time.NewTicker(tickPeriod)
	defer drainTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	heartbeatPeriod := time.Duration(cfg.MQTT.HeartbeatMs) * time.Millisecond
	return runLoop(sinks, publisher, mqttStatus, tracker, events, heartbeatPeriod, time.Now, drainTicker.C, sigCh)
}

// decodeLoop owns the conditioner and the decoder: it is the only goroutine
// that touches them, and the only producer into the event ring. It exits
// when the watcher's sample channel closes.
func decodeLoop(samples <-chan dial.Sample, tick <-chan time.Time, conditioner *dial.Conditioner, decoder *dial.Decoder, events *ring.Buffer) {
	push := func(out []dial.Event) {
		for _, e := range out {
			events.Push(e)
		}
	}

	for {
		select {
		case s, ok := <-samples:
			if !ok {
				return
			}
			if le, ok := conditioner.Submit(s); ok {
				push(decoder.OnEdge(le))
			}
		case t := <-tick:
			// Re-submit settled raw levels first so a bounce that
			// swallowed the final edge still completes the cycle.
			for _, le := range conditioner.Resample(t) {
				push(decoder.OnEdge(le))
			}
			push(decoder.OnTick(t))
		}
	}
}

// runLoop drains the event ring on every tick, delivers events to the sinks
// in order, and keeps the status tracker and MQTT heartbeat going. It
// returns when a shutdown signal arrives.
func runLoop(sinks sink.Sink, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, events *ring.Buffer, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	drain := func() {
		for {
			e, ok := events.Pop()
			if !ok {
				return
			}
			tracker.Apply(e)
			sinks.Deliver(e)
			if e.Type != dial.EventPulse {
				log.Printf("event: %s (pulses=%d)", e.Type, e.Pulses)
			}
			if publisher != nil && e.Type != dial.EventPulse {
				if err := publisher.Publish(e); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}
		}
	}

	for {
		select {
		case s := <-sig:
			drain()
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event := mqtt.SystemEvent{
					Timestamp:  now(),
					Event:      "SHUTDOWN",
					Reason:     signalName,
					Retained:   true,
					RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case t := <-tick:
			drain()
			tracker.SetRingDrops(events.Drops())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if publisher != nil && heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v digits=%d timeouts=%d",
					snap.Uptime().Truncate(time.Second), snap.Counts.Digits, snap.Counts.Timeouts)
				hbEvent := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}
