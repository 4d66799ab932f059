package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Listener consumes the live-update channel and applies each event to the
// chat threads and the connection ledger. A single goroutine drains the
// channel, so event application is serialized.
type Listener struct {
	store     Store
	directory *Directory
	ledger    *Ledger
	chats     *Chats
	selfID    string
	notify    Notifier

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewListener(store Store, directory *Directory, ledger *Ledger, chats *Chats, selfID string, notify Notifier) *Listener {
	return &Listener{
		store:     store,
		directory: directory,
		ledger:    ledger,
		chats:     chats,
		selfID:    selfID,
		notify:    notify,
	}
}

// Start subscribes to the live channel and launches the event loop. Calling
// Start on a running listener is an error; Stop first.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return fmt.Errorf("listener already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := l.store.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to live updates: %w", err)
	}

	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				l.handle(ctx, ev)
			}
		}
	}()
	return nil
}

// Stop cancels the subscription and waits for the event loop to drain.
// Stopping an idle listener is a no-op.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener) handle(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventMessageCreated:
		if ev.Message == nil {
			return
		}
		if ev.Message.SenderID != l.selfID && ev.Message.ReceiverID != l.selfID {
			return
		}
		l.chats.ApplyRemote(*ev.Message)

	case EventConnectionUpdated:
		if ev.Request == nil {
			return
		}
		if ev.Request.Status == StatusAccepted && ev.Request.SenderID == l.selfID {
			contact := l.directory.Lookup(ev.Request.ReceiverID)
			l.notify.notify(fmt.Sprintf("%s accepted your connection request", contact.Name))
			l.chats.EnsureThread(contact)
		}
		if err := l.ledger.Refresh(ctx); err != nil {
			logrus.WithError(err).Warn("ledger refresh after connection event failed")
		}

	default:
		logrus.WithField("type", ev.Type).Debug("ignoring unknown event type")
	}
}
