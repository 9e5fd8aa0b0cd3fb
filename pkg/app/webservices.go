package app

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleTime is the web handler returning the current radio time.
// Until the first frame is decoded it answers 404; afterwards the last
// known good time is reported together with reception statistics, so the
// consumer can judge how stale the value is.
func (app *App) HandleTime() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request time")

		t, receivedAt, ok := app.currentTime()
		if !ok {
			ctx.Status(http.StatusNotFound)
			return ctx.JSON(fiber.Map{"error": "no valid time received yet"})
		}

		app.clock.Lock()
		frames, faults := app.clock.frames, app.clock.faults
		app.clock.Unlock()

		return ctx.JSON(fiber.Map{
			"time":       t.Clock().Format(time.RFC3339),
			"weekday":    t.Weekday.String(),
			"dst":        t.DST,
			"receivedAt": receivedAt.Format(time.RFC3339),
			"lastBit":    app.dcf.LastBit().String(),
			"frames":     frames,
			"faults":     faults,
		})
	}
}
