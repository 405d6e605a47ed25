// Package loop implements the orchestration core: turn scheduling, topic
// completion detection, topic transition, and durable session state.
package loop

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/store"
)

// seedPreviousTopic primes next-topic generation on a fresh store.
const seedPreviousTopic = "Initial Chat"

// Responder generates one conversation turn. *persona.Engine satisfies
// this interface.
type Responder interface {
	Respond(ctx context.Context, lastMessage string, speaker session.PersonaID, history []session.Message) string
}

// Topics runs the topic lifecycle. *topic.Manager satisfies this
// interface.
type Topics interface {
	IsComplete(ctx context.Context, history []session.Message) bool
	Next(ctx context.Context, previousTopic string) string
}

// Orchestrator drives the conversation tick by tick. It owns the current
// session state and is its only mutator; collaborators receive the state
// explicitly on each call. A single Run goroutine executes ticks strictly
// sequentially, so no locking is needed within one process.
type Orchestrator struct {
	Store  store.Store
	Engine Responder
	Topics Topics
	Pack   persona.Pack

	// Jitter bounds for the next-update deadline.
	MinDelay time.Duration
	MaxDelay time.Duration

	// MaxTopics stops the loop after that many completed topics.
	// 0 means run until the context is cancelled.
	MaxTopics int

	// Events receives orchestration events when set. Sends never block:
	// a full channel drops the event rather than stalling a tick.
	Events chan<- Event

	Log zerolog.Logger

	state      session.State
	topicsDone int
	rng        *rand.Rand
	now        func() time.Time
}

// Run executes the loop until ctx is cancelled or MaxTopics is reached.
// Each tick fully commits its state before the next deadline is armed, so
// the host may terminate the process between ticks without corruption.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ensureDefaults()
	o.initSession(ctx)

	timer := time.NewTimer(o.jitter())
	defer timer.Stop()
	o.emitWaiting()

	for {
		select {
		case <-ctx.Done():
			o.emit(Event{Kind: EventStopped, Message: "conversation stopped"})
			return ctx.Err()
		case <-timer.C:
			completed := o.tick(ctx)
			if completed && o.MaxTopics > 0 && o.topicsDone >= o.MaxTopics {
				o.emit(Event{Kind: EventDone, Message: "topic budget reached", TopicsDone: o.topicsDone})
				return nil
			}
			timer.Reset(o.jitter())
			o.emitWaiting()
		}
	}
}

// tick runs one pass of the decision logic. Returns true when the
// current topic was completed and a new session started.
func (o *Orchestrator) tick(ctx context.Context) bool {
	if o.Topics.IsComplete(ctx, o.state.Messages) {
		o.completeTopic(ctx)
		return true
	}
	o.advanceTurn(ctx)
	return false
}

// initSession restores the persisted in-progress session, or seeds a
// fresh topic when none exists. Store failures during load read as "no
// current session" and trigger a fresh start.
func (o *Orchestrator) initSession(ctx context.Context) {
	doc, err := o.Store.LoadCurrent()
	if err != nil {
		o.Log.Warn().Err(err).Msg("session load failed, starting fresh")
		doc = nil
	}
	if doc != nil {
		o.state = session.State{
			Topic:     doc.Topic,
			Messages:  doc.Messages,
			StartedAt: o.now(),
		}
		o.Log.Info().Str("topic", doc.Topic).Int("messages", len(doc.Messages)).Msg("resumed session")
		o.emit(Event{Kind: EventTopicStart, Message: "resumed topic"})
		for _, m := range doc.Messages {
			o.emit(Event{Kind: EventMessage, Role: m.Role, Content: m.Content})
		}
		return
	}
	o.startSession(o.Topics.Next(ctx, seedPreviousTopic))
}

// startSession opens a brand-new in-progress session for topic with a
// single opening message from the initiating persona.
func (o *Orchestrator) startSession(topic string) {
	now := o.now()
	opening := o.Pack.OpeningMessage(topic, now)
	o.state = session.State{
		Topic:     topic,
		Messages:  []session.Message{opening},
		StartedAt: now,
	}
	o.save(session.StatusInProgress)
	o.Log.Info().Str("topic", topic).Msg("started topic")
	o.emit(Event{Kind: EventTopicStart, Message: "new topic"})
	o.emit(Event{Kind: EventMessage, Role: opening.Role, Content: opening.Content})
}

// advanceTurn appends one generated message from whichever persona did
// not speak last.
func (o *Orchestrator) advanceTurn(ctx context.Context) {
	speaker := session.NextSpeaker(o.state.Messages, o.Pack.First.ID, o.Pack.Second.ID)
	last, _ := o.state.Last()

	reply := o.Engine.Respond(ctx, last.Content, speaker, o.state.Messages)
	msg := session.NewMessage(speaker, reply, o.now())
	o.state.Append(msg)
	o.save(session.StatusInProgress)
	o.emit(Event{Kind: EventMessage, Role: msg.Role, Content: msg.Content})
}

// completeTopic appends a closing line from a coin-flip persona, finalizes
// the session, and immediately opens the next one.
func (o *Orchestrator) completeTopic(ctx context.Context) {
	closer := o.Pack.First
	if o.rng.Intn(2) == 1 {
		closer = o.Pack.Second
	}
	closing := session.NewMessage(closer.ID, persona.PickRandom(o.rng, closer.ClosingLines), o.now())
	o.state.Append(closing)
	o.emit(Event{Kind: EventMessage, Role: closing.Role, Content: closing.Content})

	o.save(session.StatusCompleted)
	o.topicsDone++
	o.Log.Info().Str("topic", o.state.Topic).Int("messages", len(o.state.Messages)).Msg("completed topic")
	o.emit(Event{Kind: EventTopicComplete, TopicsDone: o.topicsDone})

	o.startSession(o.Topics.Next(ctx, o.state.Topic))
}

// save persists the current session. A failed save is retried once
// immediately; a second failure is logged and surfaced as an event, and
// the in-memory state stays authoritative for the next tick's save.
func (o *Orchestrator) save(status session.Status) {
	err := o.Store.Save(o.state.Topic, o.state.Messages, status)
	if err == nil {
		return
	}
	o.Log.Error().Err(err).Str("topic", o.state.Topic).Msg("session save failed, retrying")
	if err = o.Store.Save(o.state.Topic, o.state.Messages, status); err != nil {
		o.Log.Error().Err(err).Str("topic", o.state.Topic).Msg("session save retry failed")
		o.emit(Event{Kind: EventError, Message: "save failed: " + err.Error()})
	}
}

// jitter draws the next-update delay uniformly from [MinDelay, MaxDelay].
func (o *Orchestrator) jitter() time.Duration {
	if o.MaxDelay <= o.MinDelay {
		return o.MinDelay
	}
	return o.MinDelay + time.Duration(o.rng.Int63n(int64(o.MaxDelay-o.MinDelay)))
}

// emit stamps and forwards an event without ever blocking the loop.
func (o *Orchestrator) emit(ev Event) {
	if o.Events == nil {
		return
	}
	ev.Timestamp = o.now()
	ev.Topic = o.state.Topic
	ev.MessageCount = len(o.state.Messages)
	ev.NextSpeaker = session.NextSpeaker(o.state.Messages, o.Pack.First.ID, o.Pack.Second.ID)
	select {
	case o.Events <- ev:
	default:
	}
}

// emitWaiting announces the armed deadline and whose turn is next, for
// the presentation layer's pre-turn indicator.
func (o *Orchestrator) emitWaiting() {
	o.emit(Event{Kind: EventWaiting})
}

func (o *Orchestrator) ensureDefaults() {
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.MinDelay <= 0 {
		o.MinDelay = 10 * time.Minute
	}
	if o.MaxDelay < o.MinDelay {
		o.MaxDelay = o.MinDelay
	}
}
