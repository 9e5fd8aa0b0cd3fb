package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"dcfclock/pkg/app"
	"dcfclock/pkg/app/config"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "DCF77 radio clock receiver",
		Version: app.VERSION,
		Description: "Decode the DCF77 longwave time signal received on a gpio pin" +
			"\n and provide the verified time over http and mqtt." +
			"\n DCF77 is broadcast from Mainflingen near Frankfurt: https://www.ptb.de",
		UsageText: "dcfclock [--conf <file>] [--log error|debug|trace]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the radio clock and use the configuration file dcfclock.yaml" +
			"\n\t\tdcfclock --conf /opt/womat/dcfclock.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "standard", Usage: "`LEVEL` defines the log level (fatal|info|warning|error|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
			defer func() {
				debug.InfoLog.Printf("closing log file %s", cfg.Log.FileString)
				_ = cfg.Log.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for an os.Interrupt signal (CTRL C)
			sig := <-quit
			debug.InfoLog.Printf("Got %s signal. Aborting...", sig)

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	if err := cliApp.Run(os.Args); err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}
