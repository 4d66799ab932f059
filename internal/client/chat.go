package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSendFailed wraps a backend rejection of an outgoing message after the
// provisional entry has been rolled back.
var ErrSendFailed = errors.New("message send failed")

// Chats holds one thread per contact. Sends are optimistic: a provisional
// message appears immediately and is rolled back if the backend rejects it.
// Threads keep messages in non-decreasing timestamp order; equal timestamps
// keep insertion order.
type Chats struct {
	mu         sync.Mutex
	store      Store
	directory  *Directory
	selfID     string
	selfAvatar string
	threads    map[string]*Thread

	now func() time.Time
}

func NewChats(store Store, directory *Directory, selfID, selfAvatar string) *Chats {
	return &Chats{
		store:      store,
		directory:  directory,
		selfID:     selfID,
		selfAvatar: selfAvatar,
		threads:    make(map[string]*Thread),
		now:        time.Now,
	}
}

// EnsureThread creates an empty thread for the contact if none exists yet.
// Called when a connection is accepted so the conversation is immediately
// visible even before any message is exchanged.
func (c *Chats) EnsureThread(contact Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLocked(contact.ID, contact)
}

func (c *Chats) ensureLocked(contactID string, contact Profile) *Thread {
	if t, ok := c.threads[contactID]; ok {
		if t.Contact.Unknown && !contact.Unknown {
			t.Contact = contact
		}
		return t
	}
	t := &Thread{ContactID: contactID, Contact: contact}
	c.threads[contactID] = t
	return t
}

// LoadThread fetches the message history with one contact and replaces the
// thread's messages. Provisional entries still awaiting confirmation are
// dropped by the replace; history is the authoritative ordering.
func (c *Chats) LoadThread(ctx context.Context, contactID string) error {
	history, err := c.store.History(ctx, contactID)
	if err != nil {
		return err
	}
	for i := range history {
		history[i].Avatar = c.avatarFor(history[i].SenderID)
	}

	c.mu.Lock()
	t := c.ensureLocked(contactID, c.directory.Lookup(contactID))
	t.Messages = history
	c.mu.Unlock()
	return nil
}

// Send appends a provisional message to the thread, then asks the backend to
// persist it. On failure exactly the provisional entry is removed, other
// messages untouched, and the error is returned for the caller to surface.
func (c *Chats) Send(ctx context.Context, contactID, text string) error {
	provisional := Message{
		ID:          "local-" + uuid.NewString(),
		SenderID:    c.selfID,
		ReceiverID:  contactID,
		Text:        text,
		CreatedAt:   c.now(),
		Avatar:      c.selfAvatar,
		Provisional: true,
	}

	c.mu.Lock()
	t := c.ensureLocked(contactID, c.directory.Lookup(contactID))
	t.insert(provisional)
	c.mu.Unlock()

	if _, err := c.store.SendMessage(ctx, contactID, text); err != nil {
		c.mu.Lock()
		t.remove(provisional.ID)
		c.mu.Unlock()
		logrus.WithError(err).WithField("contact_id", contactID).Warn("message send rejected, provisional rolled back")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// ApplyRemote folds an authoritative message from the live channel into the
// right thread. A provisional entry with the same sender and text is treated
// as the confirmation of this message and replaced; a message whose id is
// already present is dropped as a duplicate. Threads are created on the fly
// for first messages from new contacts.
func (c *Chats) ApplyRemote(msg Message) {
	contactID := msg.SenderID
	if contactID == c.selfID {
		contactID = msg.ReceiverID
	}
	msg.Avatar = c.avatarFor(msg.SenderID)
	msg.Provisional = false

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.ensureLocked(contactID, c.directory.Lookup(contactID))
	for i := range t.Messages {
		if t.Messages[i].ID == msg.ID {
			return
		}
	}
	for i := range t.Messages {
		m := &t.Messages[i]
		if m.Provisional && m.SenderID == msg.SenderID && m.Text == msg.Text {
			t.remove(m.ID)
			break
		}
	}
	t.insert(msg)
}

// ThreadFor returns a copy of the thread with the contact, or false if no
// thread exists yet.
func (c *Chats) ThreadFor(contactID string) (Thread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.threads[contactID]
	if !ok {
		return Thread{}, false
	}
	return copyThread(t), true
}

// Threads returns copies of all threads sorted by contact name.
func (c *Chats) Threads() []Thread {
	c.mu.Lock()
	out := make([]Thread, 0, len(c.threads))
	for _, t := range c.threads {
		out = append(out, copyThread(t))
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Contact.Name != out[j].Contact.Name {
			return out[i].Contact.Name < out[j].Contact.Name
		}
		return out[i].ContactID < out[j].ContactID
	})
	return out
}

func (c *Chats) avatarFor(senderID string) string {
	if senderID == c.selfID {
		return c.selfAvatar
	}
	return c.directory.Lookup(senderID).AvatarURL
}

func copyThread(t *Thread) Thread {
	cp := *t
	cp.Messages = append([]Message(nil), t.Messages...)
	return cp
}

// insert places the message keeping timestamps non-decreasing. It only moves
// past strictly later entries, so equal timestamps retain insertion order.
func (t *Thread) insert(msg Message) {
	idx := len(t.Messages)
	for idx > 0 && t.Messages[idx-1].CreatedAt.After(msg.CreatedAt) {
		idx--
	}
	t.Messages = append(t.Messages, Message{})
	copy(t.Messages[idx+1:], t.Messages[idx:])
	t.Messages[idx] = msg
}

func (t *Thread) remove(id string) {
	for i := range t.Messages {
		if t.Messages[i].ID == id {
			t.Messages = append(t.Messages[:i], t.Messages[i+1:]...)
			return
		}
	}
}
