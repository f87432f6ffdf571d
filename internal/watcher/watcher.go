// Package watcher turns fsnotify notifications for a single directory into
// an ordered stream of events.
package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrSubscription means the notification subscription could not be set up
	// or has ended. It is fatal for the caller.
	ErrSubscription = errors.New("watch subscription failed")

	// ErrReceive means a single notification could not be read. The stream
	// continues after it.
	ErrReceive = errors.New("watch event error")
)

// Kind is the kind of change an Event reports.
type Kind int

const (
	// KindOther covers removals, renames away and anything else.
	KindOther Kind = iota
	// KindCreate indicates a new entry appeared in the directory.
	KindCreate
	// KindModify indicates an existing file was written or had its attributes changed.
	KindModify
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindModify:
		return "modify"
	default:
		return "other"
	}
}

// Event is a single change reported by the operating system.
type Event struct {
	Kind  Kind
	Paths []string
}

// Watcher watches the direct children of one directory.
type Watcher struct {
	fsw *fsnotify.Watcher
	dir string
}

// New subscribes to change notifications for dir. Subdirectories are not watched.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubscription, err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("%w: watching %s: %w", ErrSubscription, dir, err)
	}

	return &Watcher{fsw: fsw, dir: dir}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Next blocks until the next event arrives. Errors wrapping ErrReceive can be
// skipped; errors wrapping ErrSubscription mean no further events will come.
// A cancelled ctx returns ctx.Err().
func (w *Watcher) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()

	case event, ok := <-w.fsw.Events:
		if !ok {
			return Event{}, fmt.Errorf("%w: event channel closed", ErrSubscription)
		}
		if event.Name == "" || event.Op == 0 {
			return Event{}, fmt.Errorf("%w: malformed event %v", ErrReceive, event)
		}
		return Event{Kind: kindOf(event), Paths: []string{event.Name}}, nil

	case err, ok := <-w.fsw.Errors:
		if !ok {
			return Event{}, fmt.Errorf("%w: error channel closed", ErrSubscription)
		}
		return Event{}, fmt.Errorf("%w: %w", ErrReceive, err)
	}
}

// Close ends the subscription.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// kindOf maps an fsnotify op to a Kind. Attribute changes count as
// modifications so that touching a file triggers it again.
func kindOf(event fsnotify.Event) Kind {
	switch {
	case event.Has(fsnotify.Create):
		return KindCreate
	case event.Has(fsnotify.Write), event.Has(fsnotify.Chmod):
		return KindModify
	default:
		return KindOther
	}
}
