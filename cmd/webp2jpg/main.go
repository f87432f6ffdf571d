package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/mahyarmirrashed/webpd/internal/config"
	"github.com/mahyarmirrashed/webpd/internal/converter"
	"github.com/mahyarmirrashed/webpd/internal/logging"
	"github.com/mahyarmirrashed/webpd/internal/matcher"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "webp2jpg",
		Usage:     "convert WebP files to JPEG once",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "crop",
				Usage:   "crop landscape images to a centred square",
				Sources: cli.EnvVars("WEBPD_CROP"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logging level: debug, info, warn, error",
				Sources: cli.EnvVars("WEBPD_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return cli.Exit("Usage: webp2jpg [--crop] FILE...", 2)
			}

			logging.Setup(log.StandardLogger(), &config.Config{LogLevel: cmd.String("log-level")})

			failed := convertAll(cmd.Args().Slice(), cmd.Bool("crop"))
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, cmd.Args().Len()), 1)
			}
			return nil
		},
	}
}

// convertAll converts each WebP path once and returns how many failed.
// Other files are skipped with a warning.
func convertAll(paths []string, crop bool) int {
	webp := matcher.WebP()

	failed := 0
	for _, path := range paths {
		if !webp.Match(path) {
			log.Warnf("Skipping %s: not a WebP file", path)
			continue
		}

		if err := converter.Convert(path, crop); err != nil {
			log.Errorf("Failed to convert %s: %v", path, err)
			failed++
		}
	}
	return failed
}
