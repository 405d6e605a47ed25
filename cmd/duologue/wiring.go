package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/backend"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/config"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/notify"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/store"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/topic"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/tui"
)

// executeRun loads config, builds the orchestrator, and runs it with
// either the dashboard or plain stdout output.
func executeRun(cfgPath, packOverride string, maxTopics int, noTUI bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if packOverride != "" {
		cfg.Chat.Pack = packOverride
	}

	ctx, cancel := signalContext()
	defer cancel()
	registerQuitHandler()

	log := newLogger(noTUI)

	orch, pack, fileStore, err := buildOrchestrator(cfg, maxTopics, log)
	if err != nil {
		return err
	}

	var notifier *notify.Notifier
	if cfg.Notifications.URL != "" {
		notifier = notify.New(cfg.Notifications.URL, cfg.Project.Name,
			cfg.Notifications.OnTopicComplete, cfg.Notifications.OnError)
	}

	if noTUI {
		return runHeadless(ctx, orch, notifier)
	}
	return runWithTUI(ctx, orch, pack, fileStore, cfg.TUI.AccentColor, notifier)
}

// buildOrchestrator assembles the full pipeline: file store, Gemini
// client, retrying adapter, persona engine, topic manager, orchestrator.
func buildOrchestrator(cfg *config.Config, maxTopics int, log zerolog.Logger) (*loop.Orchestrator, persona.Pack, *store.FileStore, error) {
	pack, err := persona.Builtin(cfg.Chat.Pack)
	if err != nil {
		return nil, persona.Pack{}, nil, err
	}

	apiKey := os.Getenv(cfg.Backend.APIKeyEnv)
	if apiKey == "" {
		return nil, persona.Pack{}, nil, fmt.Errorf("backend: environment variable %s is not set", cfg.Backend.APIKeyEnv)
	}

	fileStore, err := store.NewFileStore(cfg.Store.Dir, log)
	if err != nil {
		return nil, persona.Pack{}, nil, err
	}

	gemini := backend.NewGemini(backend.GeminiConfig{
		BaseURL: cfg.Backend.BaseURL,
		Model:   cfg.Backend.Model,
		APIKey:  apiKey,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
	}, log)

	adapter := backend.NewAdapter(gemini, backend.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinDelay:    time.Duration(cfg.Retry.MinDelaySeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelaySeconds) * time.Second,
	}, log)

	engine := persona.NewEngine(adapter, pack, cfg.Chat.ContextWindow, log)
	topics := topic.NewManager(adapter, pack, cfg.Chat.CompletionThreshold, log)

	orch := &loop.Orchestrator{
		Store:     fileStore,
		Engine:    engine,
		Topics:    topics,
		Pack:      pack,
		MinDelay:  time.Duration(cfg.Schedule.MinDelaySeconds) * time.Second,
		MaxDelay:  time.Duration(cfg.Schedule.MaxDelaySeconds) * time.Second,
		MaxTopics: maxTopics,
		Log:       log,
	}
	return orch, pack, fileStore, nil
}

// runHeadless drains orchestration events to stdout.
func runHeadless(ctx context.Context, orch *loop.Orchestrator, notifier *notify.Notifier) error {
	events := make(chan loop.Event, 128)
	orch.Events = events

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for ev := range events {
			if notifier != nil {
				notifier.Hook(ev)
			}
			if line := formatEvent(ev); line != "" {
				fmt.Fprintln(os.Stdout, line)
			}
		}
	}()

	err := orch.Run(ctx)
	close(events)
	<-drainDone

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runWithTUI runs the orchestrator behind the bubbletea dashboard. Loop
// events fan out to the notifier before reaching the TUI channel.
func runWithTUI(ctx context.Context, orch *loop.Orchestrator, pack persona.Pack, reader store.Reader, accentColor string, notifier *notify.Notifier) error {
	loopEvents := make(chan loop.Event, 128)
	tuiEvents := make(chan loop.Event, 128)
	orch.Events = loopEvents

	model := tui.New(tuiEvents, reader, pack, accentColor)
	program := tea.NewProgram(model, tea.WithAltScreen())

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for ev := range loopEvents {
			if notifier != nil {
				notifier.Hook(ev)
			}
			select {
			case tuiEvents <- ev:
			default:
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer close(tuiEvents)
		runErr := orch.Run(ctx)
		close(loopEvents)
		<-forwardDone
		errCh <- runErr
	}()

	if tuiErr := finishTUI(program); tuiErr != nil {
		return tuiErr
	}

	select {
	case loopErr := <-errCh:
		if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
			return loopErr
		}
	default:
	}
	return nil
}

// finishTUI runs the bubbletea program and returns any loop error.
// Context cancellation errors are suppressed since they indicate normal
// shutdown (user quit, signal).
func finishTUI(program *tea.Program) error {
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if m, ok := finalModel.(tui.Model); ok && m.Err() != nil {
		if errors.Is(m.Err(), context.Canceled) {
			return nil
		}
		return m.Err()
	}

	return nil
}

// formatEvent renders an event as a plain stdout line. Waiting events
// print the next speaker so an operator can tell the loop is alive.
func formatEvent(ev loop.Event) string {
	ts := ev.Timestamp.Format("15:04:05")

	switch ev.Kind {
	case loop.EventMessage:
		return fmt.Sprintf("[%s] %s: %s", ts, ev.Role, ev.Content)
	case loop.EventTopicStart:
		return fmt.Sprintf("[%s] ── %s ──", ts, ev.Topic)
	case loop.EventTopicComplete:
		return fmt.Sprintf("[%s] topic complete (%d total)", ts, ev.TopicsDone)
	case loop.EventWaiting:
		return fmt.Sprintf("[%s] waiting... next up: %s", ts, ev.NextSpeaker)
	case loop.EventError:
		return fmt.Sprintf("[%s] error: %s", ts, ev.Message)
	case loop.EventStopped, loop.EventDone, loop.EventInfo:
		return fmt.Sprintf("[%s] %s", ts, ev.Message)
	default:
		return ""
	}
}

// newLogger builds the operational logger. The dashboard owns the
// terminal, so the TUI path logs nothing.
func newLogger(noTUI bool) zerolog.Logger {
	if !noTUI {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}
