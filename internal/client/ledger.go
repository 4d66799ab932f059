package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Local preconditions checked before any network call.
var (
	ErrSelfConnection   = errors.New("cannot send a connection request to yourself")
	ErrDuplicateRequest = errors.New("a pending request to this user already exists")
)

// Ledger tracks the session user's connection requests in three views:
// incoming pending, outgoing pending, and accepted. Each row carries the
// counterpart profile, resolved in one batched lookup per refresh.
type Ledger struct {
	mu        sync.Mutex
	store     Store
	directory *Directory
	chats     *Chats
	selfID    string
	notify    Notifier

	incoming []Request
	outgoing []Request
	accepted []Request
}

func NewLedger(store Store, directory *Directory, chats *Chats, selfID string, notify Notifier) *Ledger {
	return &Ledger{
		store:     store,
		directory: directory,
		chats:     chats,
		selfID:    selfID,
		notify:    notify,
	}
}

// Refresh reloads all three views and resolves every counterpart profile
// with a single batched lookup across the combined result. Counterparts the
// lookup cannot resolve degrade to a placeholder profile.
func (l *Ledger) Refresh(ctx context.Context) error {
	incoming, err := l.store.ListIncomingPending(ctx)
	if err != nil {
		return fmt.Errorf("refresh incoming requests: %w", err)
	}
	outgoing, err := l.store.ListOutgoingPending(ctx)
	if err != nil {
		return fmt.Errorf("refresh outgoing requests: %w", err)
	}
	accepted, err := l.store.ListAccepted(ctx)
	if err != nil {
		return fmt.Errorf("refresh accepted connections: %w", err)
	}

	ids := make([]string, 0, len(incoming)+len(outgoing)+len(accepted))
	seen := make(map[string]bool)
	for _, view := range [][]Request{incoming, outgoing, accepted} {
		for i := range view {
			id := view[i].CounterpartID(l.selfID)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	profiles := map[string]Profile{}
	if len(ids) > 0 {
		profiles, err = l.store.GetProfiles(ctx, ids)
		if err != nil {
			logrus.WithError(err).Warn("counterpart profile lookup failed, using placeholders")
			profiles = map[string]Profile{}
		}
	}
	resolve := func(view []Request) {
		for i := range view {
			id := view[i].CounterpartID(l.selfID)
			if p, ok := profiles[id]; ok {
				view[i].Counterpart = p
			} else {
				view[i].Counterpart = PlaceholderProfile(id)
			}
		}
	}
	resolve(incoming)
	resolve(outgoing)
	resolve(accepted)

	l.mu.Lock()
	l.incoming = incoming
	l.outgoing = outgoing
	l.accepted = accepted
	l.mu.Unlock()
	return nil
}

// SendRequest creates an outgoing connection request. Sending to yourself or
// to a user with a pending outgoing request already in the ledger is
// rejected locally without a network call. On success the new request is
// appended to the outgoing view and a full refresh follows to pick up the
// server's view.
func (l *Ledger) SendRequest(ctx context.Context, receiverID, interestMessage string) error {
	if receiverID == l.selfID {
		return ErrSelfConnection
	}
	l.mu.Lock()
	for i := range l.outgoing {
		if l.outgoing[i].ReceiverID == receiverID {
			l.mu.Unlock()
			return ErrDuplicateRequest
		}
	}
	l.mu.Unlock()

	req, err := l.store.CreateRequest(ctx, receiverID, interestMessage)
	if err != nil {
		return fmt.Errorf("create connection request: %w", err)
	}
	req.Counterpart = l.directory.Lookup(receiverID)

	l.mu.Lock()
	l.outgoing = append(l.outgoing, req)
	l.mu.Unlock()

	if err := l.Refresh(ctx); err != nil {
		logrus.WithError(err).Warn("refresh after send request failed")
	}
	return nil
}

// Respond accepts or rejects an incoming request. On acceptance an empty
// chat thread with the new contact is created immediately; either way the
// ledger is refreshed so the row moves to its new view.
func (l *Ledger) Respond(ctx context.Context, requestID string, accept bool) error {
	req, err := l.store.RespondRequest(ctx, requestID, accept)
	if err != nil {
		return fmt.Errorf("respond to connection request: %w", err)
	}

	if accept && l.chats != nil {
		l.chats.EnsureThread(l.directory.Lookup(req.CounterpartID(l.selfID)))
	}
	if err := l.Refresh(ctx); err != nil {
		logrus.WithError(err).Warn("refresh after respond failed")
	}
	return nil
}

// IncomingPending returns a copy of the incoming pending view.
func (l *Ledger) IncomingPending() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Request(nil), l.incoming...)
}

// OutgoingPending returns a copy of the outgoing pending view.
func (l *Ledger) OutgoingPending() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Request(nil), l.outgoing...)
}

// Accepted returns a copy of the accepted connections view.
func (l *Ledger) Accepted() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Request(nil), l.accepted...)
}
