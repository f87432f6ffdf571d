package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mahyarmirrashed/webpd/internal/config"
	"github.com/mahyarmirrashed/webpd/internal/converter"
	"github.com/mahyarmirrashed/webpd/internal/matcher"
	"github.com/mahyarmirrashed/webpd/internal/utils"
	"github.com/mahyarmirrashed/webpd/internal/watcher"
)

// ConvertFunc converts one file, cropping landscape images when crop is set.
type ConvertFunc func(path string, crop bool) error

// NotifyFunc shows a desktop notification when enabled is set.
type NotifyFunc func(enabled bool, title, message string)

// EventSource yields watch events one at a time.
type EventSource interface {
	Next(ctx context.Context) (watcher.Event, error)
}

// Dispatcher filters watch events and converts WebP files one at a time.
type Dispatcher struct {
	cfg     *config.Config
	match   *matcher.Matcher
	convert ConvertFunc
	notify  NotifyFunc
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithConverter replaces the function used to convert files.
func WithConverter(fn ConvertFunc) Option {
	return func(d *Dispatcher) { d.convert = fn }
}

// WithNotifier replaces the function used for desktop notifications.
func WithNotifier(fn NotifyFunc) Option {
	return func(d *Dispatcher) { d.notify = fn }
}

// NewDispatcher returns a Dispatcher that converts with converter.Convert and
// notifies through beeep unless options replace them.
func NewDispatcher(cfg *config.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:     cfg,
		match:   matcher.WebP(),
		convert: converter.Convert,
		notify:  utils.SendNotification,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run watches cfg.WatchDir and converts WebP files until ctx is cancelled or
// SIGINT/SIGTERM is received. It returns an error only when the watch
// subscription cannot be set up or fails.
func Run(ctx context.Context, cfg *config.Config) error {
	dir := utils.ExpandTilde(cfg.WatchDir)

	w, err := watcher.New(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	// Signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Monitoring directory: %s", dir)
	if cfg.Crop {
		log.Info("Cropping landscape images to square")
	}
	log.Info("Watching for WebP files...")

	if err := NewDispatcher(cfg).Loop(ctx, w); err != nil {
		return err
	}

	log.Info("Shutting down")
	return nil
}

// Loop handles events from src in arrival order. Receive errors are logged
// and skipped. It returns nil once ctx is done and the subscription error
// if the source fails.
func (d *Dispatcher) Loop(ctx context.Context, src EventSource) error {
	for {
		ev, err := src.Next(ctx)
		switch {
		case err == nil:
			d.Handle(ctx, ev)
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, watcher.ErrReceive):
			log.Errorf("Watch error: %v", err)
		default:
			return err
		}
	}
}

// Handle converts every WebP path of a create or modify event after the
// settle delay. Failures are logged and never returned.
func (d *Dispatcher) Handle(ctx context.Context, ev watcher.Event) {
	if ev.Kind != watcher.KindCreate && ev.Kind != watcher.KindModify {
		return
	}

	for _, path := range ev.Paths {
		if !d.match.Match(path) {
			continue
		}
		log.Debugf("%s event for %s", ev.Kind, path)

		if !settle(ctx, d.cfg.SettleDelay) {
			return
		}
		d.process(path)
	}
}

// process makes a single conversion attempt for path.
func (d *Dispatcher) process(path string) {
	err := d.convert(path, d.cfg.Crop)
	switch {
	case err == nil:
		out := fmt.Sprintf("Converted %s -> %s", filepath.Base(path), filepath.Base(converter.OutputPath(path)))
		d.notify(d.cfg.Notifications, "webpd", out)
	case errors.Is(err, converter.ErrDecode) && errors.Is(err, fs.ErrNotExist):
		// Writers often send several events per file; the first one already converted it.
		log.Warnf("Skipping %s: %v", path, err)
	default:
		out := fmt.Sprintf("Failed to convert %s: %v", path, err)
		log.Error(out)
		d.notify(d.cfg.Notifications, "webpd", out)
	}
}

// settle waits for delay and reports false if ctx ended first.
func settle(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
