package app

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/womat/debug"

	"dcfclock/pkg/dcf77"
	"dcfclock/pkg/mqtt"
)

// clockState holds the last verified time value and reception statistics.
// The decoder itself keeps no history; showing the last known good time
// until the next valid frame arrives is the application's policy.
type clockState struct {
	sync.Mutex
	// current is the last verified time, valid is false until the first
	// successful decode
	current dcf77.Time
	valid   bool
	// receivedAt is the local time current was decoded
	receivedAt time.Time
	// frames counts verified frames, faults rejected ones
	frames uint64
	faults uint64
}

// timeMessage is the mqtt payload sent for every decoded frame.
type timeMessage struct {
	Time       string
	DST        bool
	ReceivedAt time.Time
}

// pollClock drives the decoder in an endless loop. Every verified frame
// updates the clock state and is published to the mqtt broker; framing
// restarts are part of normal signal acquisition and only logged.
func (app *App) pollClock() {
	for {
		switch s := app.dcf.Poll(); s.Kind {
		case dcf77.InProgress:
			time.Sleep(10 * time.Millisecond)

		case dcf77.BitReceived:
			debug.TraceLog.Printf("bit %v", s.Bit)

		case dcf77.FrameRestart:
			if errors.Is(s.Err, dcf77.ErrTooManyBits) {
				debug.DebugLog.Printf("frame restart: %v", s.Err)
			} else {
				debug.TraceLog.Printf("frame restart: %v", s.Err)
			}

		case dcf77.FrameInvalid:
			debug.WarningLog.Printf("frame rejected: %v", s.Err)
			app.clock.Lock()
			app.clock.faults++
			app.clock.Unlock()

		case dcf77.TimeAvailable:
			debug.InfoLog.Printf("time received: %v", s.Time)

			app.clock.Lock()
			app.clock.current = s.Time
			app.clock.valid = true
			app.clock.receivedAt = time.Now()
			app.clock.frames++
			app.clock.Unlock()

			app.sendMQTT(app.config.MQTT.Topic, s.Time)
		}
	}
}

// currentTime returns the last verified time value. ok is false until the
// first frame has been decoded.
func (app *App) currentTime() (t dcf77.Time, receivedAt time.Time, ok bool) {
	app.clock.Lock()
	defer app.clock.Unlock()
	return app.clock.current, app.clock.receivedAt, app.clock.valid
}

// sendMQTT sends the decoded time to the mqtt broker.
func (app *App) sendMQTT(topic string, t dcf77.Time) {
	go func() {
		debug.TraceLog.Printf("prepare mqtt message %v %v", topic, t)

		b, err := json.MarshalIndent(timeMessage{
			Time:       t.Clock().Format(time.RFC3339),
			DST:        t.DST,
			ReceivedAt: time.Now(),
		}, "", "  ")
		if err != nil {
			debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
			return
		}

		app.mqtt.C <- mqtt.Message{
			Qos:      0,
			Retained: true,
			Topic:    topic,
			Payload:  b,
		}
	}()
}
