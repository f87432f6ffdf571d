package main

import (
	"context"
	"fmt"
	"os"

	godaemon "github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/mahyarmirrashed/webpd/internal/config"
	"github.com/mahyarmirrashed/webpd/internal/daemon"
	"github.com/mahyarmirrashed/webpd/internal/logging"
)

// Set at build time: go build -ldflags "-X main.version=1.2.3"
var version = "dev"

type runFunc func(ctx context.Context, cfg *config.Config) error

func main() {
	if err := newCommand(run).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the command tree. Flag values come from the command
// line, then the environment, then the YAML config file.
func newCommand(runFn runFunc) *cli.Command {
	var configFile string
	fromFile := func(key string) cli.ValueSource {
		return yaml.YAML(key, altsrc.NewStringPtrSourcer(&configFile))
	}

	return &cli.Command{
		Name:    "webpd",
		Usage:   "WebP to JPEG conversion daemon",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WEBPD_CONFIG"),
				Value:       config.DefaultConfigFilename,
				Destination: &configFile,
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "directory to watch (not recursive)",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_DIR"), fromFile("watch_dir")),
				Value:   config.DefaultWatchDir,
			},
			&cli.BoolFlag{
				Name:    "crop",
				Usage:   "crop landscape images to a centred square",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_CROP"), fromFile("crop")),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logging level: debug, info, warn, error",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_LOG_LEVEL"), fromFile("log_level")),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs to a rotating file instead of the console",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_LOG_FILE"), fromFile("log_file")),
			},
			&cli.BoolFlag{
				Name:    "daemonize",
				Usage:   "run as daemon",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_DAEMONIZE"), fromFile("daemonize")),
			},
			&cli.BoolFlag{
				Name:    "notifications",
				Usage:   "send desktop notifications",
				Sources: cli.NewValueSourceChain(cli.EnvVar("WEBPD_NOTIFICATIONS"), fromFile("notifications")),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFromCommand(cmd)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runFn(ctx, cfg)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write the effective configuration to a YAML file",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						path = cmd.String("config")
					}

					cfg := configFromCommand(cmd)
					if err := cfg.Validate(); err != nil {
						return err
					}
					if err := config.Write(path, cfg); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}

					log.Infof("Wrote configuration to %s", path)
					return nil
				},
			},
		},
	}
}

// configFromCommand collects the resolved flag values into a Config.
func configFromCommand(cmd *cli.Command) *config.Config {
	cfg := config.Default()
	cfg.WatchDir = cmd.String("dir")
	cfg.Crop = cmd.Bool("crop")
	cfg.LogLevel = cmd.String("log-level")
	cfg.LogFile = cmd.String("log-file")
	cfg.Daemonize = cmd.Bool("daemonize")
	cfg.Notifications = cmd.Bool("notifications")
	return cfg
}

// run daemonizes if asked to, sets up logging and blocks in the watch loop.
func run(ctx context.Context, cfg *config.Config) error {
	// Only daemonize if config says so
	if cfg.Daemonize {
		daemonCtx := &godaemon.Context{
			PidFileName: "webpd.pid",
			PidFilePerm: 0644,
			LogFileName: "webpd.log",
			LogFilePerm: 0640,
			WorkDir:     "./",
			Umask:       027,
			Args:        append([]string{"[webpd]"}, os.Args[1:]...),
		}

		d, err := daemonCtx.Reborn()
		if err != nil {
			return fmt.Errorf("unable to run: %w", err)
		}
		if d != nil {
			return nil // Parent process exits
		}
		defer daemonCtx.Release()
	}

	closer := logging.Setup(log.StandardLogger(), cfg)
	defer closer.Close()

	if cfg.Daemonize {
		log.Info("Daemon started")
	} else {
		log.Info("Running in foreground (not daemonized)")
	}
	log.Infof("WebP to JPG converter %s starting...", version)

	return daemon.Run(ctx, cfg)
}
