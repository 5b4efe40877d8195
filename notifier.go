package ballot

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Notification is published after a successful mutation.
type Notification interface {
	Topic() string
}

// ProposalCreated is published once per successful CreateProposal.
type ProposalCreated struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}

func (ProposalCreated) Topic() string { return "ProposalCreated" }

// VoteCast is published once per successful Vote.
type VoteCast struct {
	ProposalID uint32   `json:"proposal_id"`
	Voter      Identity `json:"voter"`
}

func (VoteCast) Topic() string { return "VoteCast" }

// Notifier is the outbound notification channel. Publish is fire-and-forget.
type Notifier interface {
	Publish(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Publish implements Notifier.
func (f NotifierFunc) Publish(n Notification) {
	if f != nil {
		f(n)
	}
}

type noopNotifier struct{}

func (noopNotifier) Publish(Notification) {}

// MultiNotifier fans every notification out to each notifier in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Publish(n)
		}
	}
}

// LogNotifier writes one line per notification.
type LogNotifier struct {
	Logger *log.Logger
}

func (ln LogNotifier) Publish(n Notification) {
	logger := ln.Logger
	if logger == nil {
		logger = log.Default()
	}
	switch event := n.(type) {
	case ProposalCreated:
		logger.Printf("%s id=%d title=%q", event.Topic(), event.ID, event.Title)
	case VoteCast:
		logger.Printf("%s proposal_id=%d voter=%s", event.Topic(), event.ProposalID, event.Voter)
	default:
		logger.Printf("%s %+v", n.Topic(), n)
	}
}

// Envelope is a recorded notification.
type Envelope struct {
	ID           uuid.UUID    `json:"id"`
	Sequence     int          `json:"sequence"`
	Topic        string       `json:"topic"`
	Notification Notification `json:"notification"`
}

func (e Envelope) String() string {
	return fmt.Sprintf("#%d %s %+v", e.Sequence, e.Topic, e.Notification)
}

// Recorder keeps every published notification in publication order.
type Recorder struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, Envelope{
		ID:           uuid.New(),
		Sequence:     len(r.envelopes),
		Topic:        n.Topic(),
		Notification: n,
	})
}

// Envelopes returns a copy of everything recorded so far.
func (r *Recorder) Envelopes() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.envelopes...)
}

// Notifications returns the recorded notifications without their envelopes.
func (r *Recorder) Notifications() []Notification {
	envelopes := r.Envelopes()
	notifications := make([]Notification, 0, len(envelopes))
	for _, envelope := range envelopes {
		notifications = append(notifications, envelope.Notification)
	}
	return notifications
}
