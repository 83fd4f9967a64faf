package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/observability"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

const notifyJobTimeout = 10 * time.Second

// notifyDrainTimeout bounds how long queued jobs are still processed after shutdown.
const notifyDrainTimeout = 5 * time.Second

// CompletionStats is the graded summary sent with a completion notification.
type CompletionStats struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Remarks        string `json:"remarks"`
}

// CompletionEvent describes a committed submission.
type CompletionEvent struct {
	CandidateID uint
	TestID      uint
	TestTitle   string
	Stats       CompletionStats
	CompletedAt time.Time
}

// CompletionDispatcher accepts completion events without blocking the caller.
type CompletionDispatcher interface {
	Notify(event CompletionEvent)
}

// EmailSender delivers the completion e-mail to a candidate.
type EmailSender interface {
	SendCompletionNotification(ctx context.Context, email, name, testTitle string, stats CompletionStats) error
}

// EventPublisher publishes raw messages. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// LogEmailSender only logs the notification.
type LogEmailSender struct {
	logger zerolog.Logger
}

// NewLogEmailSender constructs a logging sender.
func NewLogEmailSender(logger zerolog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger.With().Str("component", "email_sender").Logger()}
}

// SendCompletionNotification logs the message and reports success.
func (l *LogEmailSender) SendCompletionNotification(ctx context.Context, email, name, testTitle string, stats CompletionStats) error {
	l.logger.Info().
		Str("email", maskEmail(email)).
		Str("candidate", name).
		Str("test", testTitle).
		Int("score", stats.Score).
		Str("remarks", stats.Remarks).
		Msg("completion notification queued for delivery")
	return nil
}

type completionMessage struct {
	EventID     string          `json:"event_id"`
	NodeID      string          `json:"node_id"`
	CandidateID uint            `json:"candidate_id"`
	TestID      uint            `json:"test_id"`
	TestTitle   string          `json:"test_title"`
	Stats       CompletionStats `json:"stats"`
	CompletedAt time.Time       `json:"completed_at"`
}

// CompletionNotifier runs post-commit side effects of a submission on a
// background worker. Failures are logged and never reach the submitter.
type CompletionNotifier struct {
	users       repository.UserRepository
	invitations repository.InvitationRepository
	sender      EmailSender
	publisher   EventPublisher
	subject     string
	nodeID      string
	queue       chan CompletionEvent
	drainFor    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
	wg          sync.WaitGroup
}

// NewCompletionNotifier constructs the notifier. publisher may be nil.
func NewCompletionNotifier(users repository.UserRepository, invitations repository.InvitationRepository, sender EmailSender, publisher EventPublisher, subjectPrefix string, queueSize int, logger zerolog.Logger) *CompletionNotifier {
	if queueSize <= 0 {
		queueSize = 64
	}
	if subjectPrefix == "" {
		subjectPrefix = "suitetest"
	}

	return &CompletionNotifier{
		users:       users,
		invitations: invitations,
		sender:      sender,
		publisher:   publisher,
		subject:     subjectPrefix + ".tests.completed",
		nodeID:      uuid.NewString(),
		queue:       make(chan CompletionEvent, queueSize),
		drainFor:    notifyDrainTimeout,
		logger:      logger.With().Str("component", "completion_notifier").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the worker. When ctx is cancelled the jobs already queued are
// processed for a bounded time before the worker stops.
func (n *CompletionNotifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-ctx.Done():
				n.drain(ctx)
				return
			case event := <-n.queue:
				if ctx.Err() != nil {
					n.drain(ctx, event)
					return
				}
				n.handle(ctx, event)
			}
		}
	}()
}

func (n *CompletionNotifier) drain(parent context.Context, pending ...CompletionEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), n.drainFor)
	defer cancel()

	handled, dropped := 0, 0
	process := func(event CompletionEvent) {
		if ctx.Err() != nil {
			dropped++
			observability.NotificationsDropped().Inc()
			return
		}
		n.handle(ctx, event)
		handled++
	}

	for _, event := range pending {
		process(event)
	}
	for {
		select {
		case event := <-n.queue:
			process(event)
		default:
			if handled+dropped > 0 {
				n.logger.Info().Int("handled", handled).Int("dropped", dropped).Msg("completion queue drained on shutdown")
			}
			return
		}
	}
}

// Wait blocks until the worker has stopped.
func (n *CompletionNotifier) Wait() {
	n.wg.Wait()
}

// Notify enqueues the event, dropping it when the queue is full.
func (n *CompletionNotifier) Notify(event CompletionEvent) {
	select {
	case n.queue <- event:
	default:
		observability.NotificationsDropped().Inc()
		n.logger.Warn().
			Uint("candidate_id", event.CandidateID).
			Uint("test_id", event.TestID).
			Msg("completion queue full, dropping notification")
	}
}

func (n *CompletionNotifier) handle(parent context.Context, event CompletionEvent) {
	ctx, cancel := context.WithTimeout(parent, notifyJobTimeout)
	defer cancel()

	logger := n.logger.With().Uint("candidate_id", event.CandidateID).Uint("test_id", event.TestID).Logger()

	user, err := n.users.GetByID(ctx, event.CandidateID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load candidate for completion notification")
	} else {
		if n.sender != nil {
			if err := n.sender.SendCompletionNotification(ctx, user.Email, user.Name, event.TestTitle, event.Stats); err != nil {
				logger.Error().Err(err).Msg("failed to send completion notification")
			}
		}

		if n.invitations != nil {
			updated, err := n.invitations.MarkCompleted(ctx, user.Email, event.TestID, n.now())
			if err != nil {
				logger.Error().Err(err).Msg("failed to update invitation status")
			} else if updated > 0 {
				logger.Debug().Int64("invitations", updated).Msg("invitations marked completed")
			}
		}
	}

	n.publish(logger, event)
}

func (n *CompletionNotifier) publish(logger zerolog.Logger, event CompletionEvent) {
	if n.publisher == nil {
		return
	}

	payload, err := json.Marshal(completionMessage{
		EventID:     uuid.NewString(),
		NodeID:      n.nodeID,
		CandidateID: event.CandidateID,
		TestID:      event.TestID,
		TestTitle:   event.TestTitle,
		Stats:       event.Stats,
		CompletedAt: event.CompletedAt,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode completion event")
		return
	}

	if err := n.publisher.Publish(n.subject, payload); err != nil {
		logger.Error().Err(err).Str("subject", n.subject).Msg("failed to publish completion event")
	}
}

// maskEmail keeps the first and last character of the local part.
func maskEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}
