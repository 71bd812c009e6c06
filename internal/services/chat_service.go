package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"velora/internal/backend"
	"velora/internal/bus"
	"velora/internal/domain"
	"velora/internal/reconcile"
)

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrSendInFlight = errors.New("a send is already in flight")
)

type chatAPI interface {
	Messages(ctx context.Context, token string) ([]domain.Message, error)
	AdminReplies(ctx context.Context, token string) ([]domain.Message, error)
	SendMessage(ctx context.Context, token, text string) (backend.SendResult, error)
}

// ChatService keeps one support-widget session per browser session: an
// optimistic message list fed by a fixed-interval poll of admin replies
// while the widget is open. Sessions idle past the timeout are torn down.
type ChatService struct {
	API          chatAPI
	PollInterval time.Duration
	IdleTimeout  time.Duration
	Bus          *bus.Bus

	mu       sync.Mutex
	sessions map[string]*chatSession
}

type chatSession struct {
	list     *reconcile.List[domain.Message, string]
	cancel   context.CancelFunc
	mu       sync.Mutex
	draft    string
	sending  bool
	lastSeen time.Time
}

func NewChatService(api chatAPI, signals *bus.Bus, poll, idle time.Duration) *ChatService {
	if poll <= 0 {
		poll = 3 * time.Second
	}
	if idle <= 0 {
		idle = 2 * time.Minute
	}
	return &ChatService{
		API:          api,
		PollInterval: poll,
		IdleTimeout:  idle,
		Bus:          signals,
		sessions:     make(map[string]*chatSession),
	}
}

func messageOrder(a, b domain.Message) bool { return a.CreatedAt.Before(b.CreatedAt) }

func messageID(m domain.Message) string { return m.ID }

// open returns the live widget session, creating it (with its poller) on
// first use.
func (s *ChatService) open(sessionID, token string) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.sessions[sessionID]; ok {
		cs.touch()
		return cs
	}

	cs := &chatSession{
		list:     reconcile.NewList[domain.Message, string](messageID, messageOrder),
		lastSeen: time.Now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cs.cancel = cancel
	s.sessions[sessionID] = cs

	// Full thread once, then the cheaper reply poll. The poller never
	// applies a result after cancellation, so a slow response cannot write
	// into a closed widget.
	go func() {
		if msgs, err := s.API.Messages(ctx, token); err == nil && ctx.Err() == nil {
			cs.list.Reconcile(msgs)
		}
		reconcile.NewPoller(s.PollInterval, func(ctx context.Context) {
			msgs, err := s.API.AdminReplies(ctx, token)
			if err != nil || ctx.Err() != nil {
				return
			}
			cs.list.Reconcile(msgs)
		}).Run(ctx)
	}()

	return cs
}

// Snapshot returns the rendered thread and the preserved draft text.
func (s *ChatService) Snapshot(sessionID, token string) ([]domain.Message, string) {
	cs := s.open(sessionID, token)
	cs.mu.Lock()
	draft := cs.draft
	cs.mu.Unlock()
	return cs.list.Snapshot(), draft
}

// Send appends a provisional message immediately and clears the draft, then
// fires the request. On success the provisional record is replaced by the
// backend's confirmed thread slice; on failure it is rolled back and the
// typed text is restored so nothing the user wrote is lost. One attempt, no
// retry.
func (s *ChatService) Send(ctx context.Context, sessionID, token, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	cs := s.open(sessionID, token)

	cs.mu.Lock()
	if cs.sending {
		cs.mu.Unlock()
		return ErrSendInFlight
	}
	cs.sending = true
	cs.draft = ""
	cs.mu.Unlock()

	defer func() {
		cs.mu.Lock()
		cs.sending = false
		cs.mu.Unlock()
	}()

	tempID := reconcile.TempID()
	cs.list.Append(domain.Message{
		ID:          tempID,
		Text:        text,
		Sender:      domain.SenderUser,
		CreatedAt:   time.Now(),
		Provisional: true,
	})

	res, err := s.API.SendMessage(ctx, token, text)
	if err != nil || !res.Success {
		cs.list.Rollback(tempID)
		cs.mu.Lock()
		cs.draft = text
		cs.mu.Unlock()
		if err != nil {
			return err
		}
		return errors.New("message was not accepted")
	}

	cs.list.Resolve(tempID, res.Messages)
	return nil
}

// SetDraft stores in-progress input so a reopened widget shows it again.
func (s *ChatService) SetDraft(sessionID, token, text string) {
	cs := s.open(sessionID, token)
	cs.mu.Lock()
	cs.draft = text
	cs.mu.Unlock()
}

// Close tears the widget session down and stops its poller.
func (s *ChatService) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.sessions[sessionID]; ok {
		cs.cancel()
		delete(s.sessions, sessionID)
	}
}

// Run sweeps idle sessions until ctx ends. Call it once from main. When a
// bus is wired, an identity change (login or logout) tears the session's
// widget down too: its poller holds the old bearer token, so keeping it
// alive would serve the previous identity's thread.
func (s *ChatService) Run(ctx context.Context) {
	if s.Bus != nil {
		for _, topic := range []bus.Topic{bus.TopicLogin, bus.TopicLogout} {
			ch, cancel := s.Bus.Subscribe(topic)
			defer cancel()
			go func(ch <-chan bus.Event) {
				for ev := range ch {
					s.Close(ev.SessionID)
				}
			}(ch)
		}
	}

	t := time.NewTicker(s.IdleTimeout / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-t.C:
			s.evictIdle()
		}
	}
}

func (s *ChatService) evictIdle() {
	cutoff := time.Now().Add(-s.IdleTimeout)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cs := range s.sessions {
		cs.mu.Lock()
		idle := cs.lastSeen.Before(cutoff)
		cs.mu.Unlock()
		if idle {
			cs.cancel()
			delete(s.sessions, id)
		}
	}
}

func (s *ChatService) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cs := range s.sessions {
		cs.cancel()
		delete(s.sessions, id)
	}
}

func (cs *chatSession) touch() {
	cs.mu.Lock()
	cs.lastSeen = time.Now()
	cs.mu.Unlock()
}

var _ chatAPI = (*backend.Client)(nil)
