package app

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"dcfclock/pkg/app/config"
	"dcfclock/pkg/dcf77"
	"dcfclock/pkg/mqtt"
	"dcfclock/pkg/port"
	"dcfclock/pkg/raspberry"
	"dcfclock/pkg/simulator"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Webserver.URL parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio is the handler to the gpio driver, nil in simulate mode
	gpio raspberry.GPIO

	// line is the watched receiver pin (or its simulation)
	line raspberry.Line

	// dcf is the DCF77 signal decoder
	dcf *dcf77.Decoder

	// clock holds the last verified time and reception statistics
	clock clockState

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the web server URL and initializes the main app structure.
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(),
		mqtt: mqtt.New(),

		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.pollClock()

	return nil
}

// init opens the receiver line, connects the decoder and the mqtt broker.
func (app *App) init() error {
	startEdge, err := startEdgeType(app.config.StartEdge)
	if err != nil {
		debug.ErrorLog.Printf("invalid startedge %q", app.config.StartEdge)
		return err
	}

	app.dcf = dcf77.New(dcf77.Config{StartEdge: startEdge})

	if app.config.Simulate {
		app.line = simulator.New(startEdge)
	} else {
		if app.gpio, err = raspberry.Open(app.config.Driver); err != nil {
			debug.ErrorLog.Printf("can't open gpio: %v", err)
			return err
		}

		if app.line, err = app.gpio.NewLine(app.config.Gpio, app.config.Terminator, app.config.BounceTime); err != nil {
			debug.ErrorLog.Printf("can't open pin: %v", err)
			return err
		}
	}

	app.dcf.Connect(app.line.Events())
	if err = app.line.Watch(); err != nil {
		debug.ErrorLog.Printf("can't watch pin: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should always be called last because it may
	// access things which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// startEdgeType maps the configured polarity to the line event type.
func startEdgeType(s string) (port.EventType, error) {
	switch s {
	case "rising":
		return port.RisingEdge, nil
	case "falling":
		return port.FallingEdge, nil
	}
	return 0, raspberry.ErrInvalidParam
}

// pauseReception gives the caller exclusive access to the receiver pin,
// e.g. while the line is reconfigured. Edges arriving during the pause
// are lost; the decoder re-synchronizes on the next sync gap.
func (app *App) pauseReception() {
	app.line.Unwatch()
	app.dcf.PauseReception()
}

// resumeReception restarts signal reception after pauseReception.
func (app *App) resumeReception() {
	app.dcf.ResumeReception()
	_ = app.line.Watch()
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart. (see cmd/dcfclock.go)
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/dcfclock.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

func (app *App) Close() error {
	if app.line != nil {
		app.pauseReception()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	if app.dcf != nil {
		_ = app.dcf.Close()
	}
	if app.line != nil {
		_ = app.line.Close()
	}
	if app.gpio != nil {
		_ = app.gpio.Close()
	}
	return nil
}
