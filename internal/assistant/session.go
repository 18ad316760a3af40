package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-assistant/internal/weather"
)

// Greeting is the first bot message of every session.
const Greeting = "Hi, I'm WeatherBot. Ask me about the weather (e.g. \"Will it rain tomorrow in Lagos?\")."

// Placeholder is the text of a bot message whose reply is still being computed.
const Placeholder = "Thinking..."

// DefaultReplyTimeout bounds one reply pipeline when Config leaves it unset.
const DefaultReplyTimeout = 20 * time.Second

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status tracks a bot message through its pipeline.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Message is one transcript entry. IDs increase monotonically per session.
type Message struct {
	ID     int64     `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
	Status Status    `json:"status"`
}

// State is a reply pipeline's position in the conversation state machine.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingPlace   State = "awaiting-place"
	StateFetchingWeather State = "fetching-weather"
	StateSynthesizing    State = "synthesizing"
)

// SnapshotFetcher fetches weather for a resolved place.
type SnapshotFetcher interface {
	Forecast(ctx context.Context, coords weather.Coordinates) (weather.Snapshot, error)
}

// Config holds what every session needs.
type Config struct {
	Resolver *Resolver
	Fetcher  SnapshotFetcher
	// Preferences is read once per utterance, when the pipeline is triggered.
	Preferences  func() weather.Preferences
	ReplyTimeout time.Duration
	Clock        func() time.Time
}

// Ticket correlates one utterance with the placeholder its reply replaces.
type Ticket struct {
	UserMessageID int64 `json:"userMessageId"`
	PlaceholderID int64 `json:"placeholderId"`
	// Done is closed once the placeholder has been replaced.
	Done <-chan struct{} `json:"-"`
}

// Session is one conversation. Each utterance runs its own reply pipeline;
// pipelines may overlap and each replaces only its own placeholder.
type Session struct {
	id  string
	cfg Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	nextID     int64
	transcript []Message
	lastActive time.Time
	closed     bool
}

// NewSession starts a session with a fresh ID and the greeting message.
func NewSession(cfg Config) *Session {
	if cfg.Resolver == nil {
		cfg.Resolver = NewResolver(nil)
	}
	if cfg.Preferences == nil {
		cfg.Preferences = func() weather.Preferences { return weather.Preferences{} }
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	s.mu.Lock()
	s.appendLocked(SenderBot, Greeting, StatusDone)
	s.mu.Unlock()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) appendLocked(sender Sender, text string, status Status) Message {
	s.nextID++
	now := s.cfg.Clock()
	m := Message{ID: s.nextID, Sender: sender, Text: text, Time: now, Status: status}
	s.transcript = append(s.transcript, m)
	s.lastActive = now
	return m
}

// Send records the user's utterance and a placeholder, then computes the
// reply in the background. Blank input is rejected.
func (s *Session) Send(text string) (Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Ticket{}, ErrEmptyUtterance
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Ticket{}, ErrSessionClosed
	}
	user := s.appendLocked(SenderUser, text, StatusDone)
	placeholder := s.appendLocked(SenderBot, Placeholder, StatusPending)
	s.wg.Add(1)
	s.mu.Unlock()

	prefs := s.cfg.Preferences()
	done := make(chan struct{})
	go s.run(placeholder.ID, text, prefs, done)

	return Ticket{UserMessageID: user.ID, PlaceholderID: placeholder.ID, Done: done}, nil
}

type pipeline struct {
	session string
	id      int64
	state   State
}

func (p *pipeline) transition(to State) {
	log.Printf("DEBUG: session %s reply %d: %s -> %s", p.session, p.id, p.state, to)
	p.state = to
}

func (s *Session) run(placeholderID int64, text string, prefs weather.Preferences, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.ReplyTimeout)
	defer cancel()

	p := &pipeline{session: s.id, id: placeholderID, state: StateIdle}
	reply, status := s.reply(ctx, p, text, prefs)
	p.transition(StateIdle)

	s.replace(placeholderID, reply, status)
}

func (s *Session) reply(ctx context.Context, p *pipeline, text string, prefs weather.Preferences) (string, Status) {
	intent := ParseIntent(text)

	var (
		loc weather.NamedLocation
		err error
	)
	switch intent.Place.Kind {
	case PlaceExplicit:
		p.transition(StateAwaitingPlace)
		loc, err = s.cfg.Resolver.Resolve(ctx, intent.Place.Text)
	case PlaceHere:
		loc, err = s.cfg.Resolver.ResolveHere(prefs.Active)
	default:
		// No place mentioned: use the active location before asking.
		loc, err = s.cfg.Resolver.ResolveHere(prefs.Active)
		if errors.Is(err, ErrLocationUnknown) {
			err = errNeedPlace
		}
	}
	if err != nil {
		return s.fail(p, err, intent.Place.Text)
	}

	if s.cfg.Fetcher == nil {
		return s.fail(p, fmt.Errorf("%w: no weather source configured", ErrFetchFailure), "")
	}
	p.transition(StateFetchingWeather)
	snap, err := s.cfg.Fetcher.Forecast(ctx, loc.Coordinates)
	if err != nil {
		return s.fail(p, fmt.Errorf("%w: forecast for %s: %v", ErrFetchFailure, loc.Key(), err), "")
	}

	p.transition(StateSynthesizing)
	return Synthesize(intent, snap, loc.DisplayName(), prefs.Formatter(), s.cfg.Clock()), StatusDone
}

func (s *Session) fail(p *pipeline, err error, query string) (string, Status) {
	if errors.Is(err, ErrFetchFailure) {
		log.Printf("ERROR: session %s reply %d: %v", p.session, p.id, err)
		return Clarify(err, query), StatusFailed
	}
	log.Printf("INFO: session %s reply %d: %v", p.session, p.id, err)
	return Clarify(err, query), StatusDone
}

// replace swaps the placeholder with id for the final reply.
func (s *Session) replace(id int64, text string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Clock()
	for i := range s.transcript {
		if s.transcript[i].ID == id {
			s.transcript[i].Text = text
			s.transcript[i].Status = status
			s.transcript[i].Time = now
			s.lastActive = now
			return
		}
	}
}

// Transcript returns a copy of all messages in order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}

// Message returns the message with id.
func (s *Session) Message(id int64) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.transcript {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// LastActive is the time of the latest message or reply.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close cancels in-flight replies and waits for them to settle. Their
// placeholders are replaced with an apology.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
