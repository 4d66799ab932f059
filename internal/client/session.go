package client

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Session wires the directory, ledger, chats, and listener for one
// authenticated user. Sessions are created per login and torn down on
// logout; nothing here is global.
type Session struct {
	SelfID string

	Directory *Directory
	Ledger    *Ledger
	Chats     *Chats

	listener *Listener
}

// NewSession builds the session components over one Store. selfAvatar is the
// user's own avatar URL, attached to locally synthesized messages.
func NewSession(store Store, selfID, selfAvatar string, notify Notifier) *Session {
	directory := NewDirectory(store)
	chats := NewChats(store, directory, selfID, selfAvatar)
	ledger := NewLedger(store, directory, chats, selfID, notify)
	listener := NewListener(store, directory, ledger, chats, selfID, notify)

	return &Session{
		SelfID:    selfID,
		Directory: directory,
		Ledger:    ledger,
		Chats:     chats,
		listener:  listener,
	}
}

// Start loads the directory, refreshes the ledger, seeds a thread for every
// accepted connection with its history, and starts the live listener. A
// directory load failure is tolerated (counterparts degrade to
// placeholders); a ledger refresh failure aborts the start.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Directory.LoadAll(ctx); err != nil {
		logrus.WithError(err).Warn("session start: directory unavailable")
	}
	if err := s.Ledger.Refresh(ctx); err != nil {
		return fmt.Errorf("session start: %w", err)
	}

	for _, conn := range s.Ledger.Accepted() {
		s.Chats.EnsureThread(conn.Counterpart)
		if err := s.Chats.LoadThread(ctx, conn.Counterpart.ID); err != nil {
			logrus.WithError(err).WithField("contact_id", conn.Counterpart.ID).Warn("session start: thread history unavailable")
		}
	}

	if err := s.listener.Start(ctx); err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	return nil
}

// Close stops the live listener. The Store itself is owned by the caller.
func (s *Session) Close() {
	s.listener.Stop()
}
