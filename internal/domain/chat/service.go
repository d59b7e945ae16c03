package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/conversation"
	domainErrors "jan-server/services/assistant-api/internal/domain/errors"
	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/domain/serving"
	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/domain/thread"
	"jan-server/services/assistant-api/internal/domain/translate"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/infrastructure/observability"
	"jan-server/services/assistant-api/internal/utils/idgen"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
	"jan-server/services/assistant-api/internal/webhook"
)

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	conversations conversation.Service
	threads       thread.Service
	provider      serving.Provider
	translator    translate.Translator
	transcriber   speech.Transcriber
	sessions      session.Store
	mirrorQueue   outbox.Queue
	notifier      webhook.Service
	contextLength int
	log           zerolog.Logger
}

// NewService wires dependencies. The translator, transcriber, session
// store, and notifier may be nil when those features are not configured.
func NewService(
	conversations conversation.Service,
	threads thread.Service,
	provider serving.Provider,
	translator translate.Translator,
	transcriber speech.Transcriber,
	sessions session.Store,
	mirrorQueue outbox.Queue,
	notifier webhook.Service,
	contextLength int,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		conversations: conversations,
		threads:       threads,
		provider:      provider,
		translator:    translator,
		transcriber:   transcriber,
		sessions:      sessions,
		mirrorQueue:   mirrorQueue,
		notifier:      notifier,
		contextLength: contextLength,
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// Converse answers one text turn.
func (s *ServiceImpl) Converse(ctx context.Context, params ConverseParams) (*ConverseResult, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"query must not be empty",
			nil,
			"",
		)
	}
	return s.converse(ctx, params.ConversationID, params.SessionID, params.Language, query, thread.StepKindMessage)
}

// ConverseAudio transcribes the audio and answers the recognized text.
func (s *ServiceImpl) ConverseAudio(ctx context.Context, params ConverseAudioParams) (*ConverseAudioResult, error) {
	if s.transcriber == nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotImplemented,
			"speech recognition is not configured",
			nil,
			"",
		)
	}
	if len(params.Audio) == 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"audio payload must not be empty",
			nil,
			"",
		)
	}

	locales := params.Locales
	if len(locales) == 0 {
		locales = s.sessionSettings(ctx, params.SessionID).Locales
	}
	if len(locales) == 0 {
		locales = speech.DefaultLocales
	}
	transcription, err := s.transcriber.Transcribe(ctx, params.Audio, params.ContentType, locales)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	transcript := strings.TrimSpace(transcription.Text)
	if transcript == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"no speech recognized in audio",
			nil,
			"",
		)
	}

	result, err := s.converse(ctx, params.ConversationID, params.SessionID, params.Language, transcript, thread.StepKindAudioEnd)
	if err != nil {
		return nil, err
	}
	return &ConverseAudioResult{
		ConverseResult: *result,
		Transcript:     transcript,
		Locale:         transcription.Locale,
	}, nil
}

// converse runs the shared turn flow: ensure the conversation, build the
// trimmed context, call the serving endpoint, then record the turn and its
// step. Recording is best-effort: the generated answer is returned even
// when persistence fails.
func (s *ServiceImpl) converse(ctx context.Context, conversationID, sessionID, language, query string, kind thread.StepKind) (*ConverseResult, error) {
	if strings.TrimSpace(conversationID) == "" {
		conversationID = idgen.GenerateSecureID("conv", 16)
	}
	mode := "text"
	if kind == thread.StepKindAudioEnd {
		mode = "audio"
	}
	ctx, span := observability.StartConverseSpan(ctx, conversationID, mode)
	defer span.End()

	if _, err := s.conversations.EnsureExists(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}

	history, err := s.conversations.History(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	messages := make([]serving.Message, 0, len(history))
	for _, msg := range history {
		messages = append(messages, serving.Message{Role: string(msg.Role), Content: msg.Content})
	}
	trimmed := serving.TrimHistoryToFitContext(messages, s.contextLength)
	if trimmed.TrimmedCount > 0 {
		s.log.Debug().
			Int("dropped", trimmed.TrimmedCount).
			Int("estimated_tokens", trimmed.EstimatedTokens).
			Str("conversation_id", conversationID).
			Msg("history trimmed to fit context")
	}

	settings := s.sessionSettings(ctx, sessionID)
	if language != "" {
		settings.Language = language
	}
	servingQuery := query
	if s.translateNeeded(settings) {
		servingQuery = s.translateText(ctx, query, settings.Language, translate.LanguageEnglish)
	}

	answer, err := s.provider.Generate(ctx, servingQuery, trimmed.Messages)
	if err != nil {
		observability.RecordError(span, err, domainErrors.Classify(err).String())
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	displayAnswer := answer.Content
	if s.translateNeeded(settings) {
		displayAnswer = s.translateText(ctx, answer.Content, translate.LanguageEnglish, settings.Language)
	}

	messageID := idgen.GenerateSecureID("msg", 16)
	span.SetAttributes(observability.ConversationAttributes(conversationID, messageID)...)
	stepID := messageID
	parentID := ""
	if kind == thread.StepKindMessage {
		stepID = idgen.GenerateSecureID("step", 16)
		parentID = messageID
	}

	persisted := true
	if err := s.RecordTurn(ctx, RecordTurnParams{
		ConversationID:    conversationID,
		MessageID:         messageID,
		UserMessage:       servingQuery,
		Answer:            answer.Content,
		Context:           answer.Context,
		RephrasedQuery:    answer.RephrasedQuery,
		CheckQuery:        answer.CheckQuery,
		ComparisonDetails: answer.ComparisonDetails,
		RequestID:         answer.RequestID,
	}); err != nil {
		// The answer was already generated; a lost record must not
		// suppress it.
		s.log.Error().
			Err(err).
			Str("conversation_id", conversationID).
			Str("message_id", messageID).
			Msg("turn not persisted, returning answer anyway")
		metrics.RecordTurnRecorded("failed")
		persisted = false
	} else {
		metrics.RecordTurnRecorded("ok")
	}

	if _, err := s.threads.RecordStep(ctx, thread.RecordStepParams{
		StepID:   stepID,
		ThreadID: conversationID,
		ParentID: parentID,
		Name:     string(kind),
		Input:    query,
		Output:   displayAnswer,
	}); err != nil {
		s.log.Error().
			Err(err).
			Str("thread_id", conversationID).
			Str("step_id", stepID).
			Msg("step not persisted")
	}

	return &ConverseResult{
		ConversationID: conversationID,
		MessageID:      messageID,
		StepID:         stepID,
		Answer:         displayAnswer,
		RephrasedQuery: answer.RephrasedQuery,
		Context:        answer.Context,
		RequestID:      answer.RequestID,
		Persisted:      persisted,
	}, nil
}

// CreateConversation provisions an empty conversation record.
func (s *ServiceImpl) CreateConversation(ctx context.Context, conversationID string) (*conversation.Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		conversationID = idgen.GenerateSecureID("conv", 16)
	}
	return s.conversations.Create(ctx, conversationID)
}

// GetContext returns the role-tagged message history used as model context.
func (s *ServiceImpl) GetContext(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	if _, err := s.conversations.EnsureExists(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}
	return s.conversations.History(ctx, conversationID)
}

// RecordTurn appends one exchange to the conversation record, creating the
// record on first use. Feedback starts at its unset defaults.
func (s *ServiceImpl) RecordTurn(ctx context.Context, params RecordTurnParams) error {
	if _, err := s.conversations.EnsureExists(ctx, params.ConversationID); err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}

	turn := conversation.NewTurn(params.MessageID, params.UserMessage, params.Answer)
	turn.RephrasedMessage = params.RephrasedQuery
	turn.CheckQuery = params.CheckQuery
	turn.Context = params.Context
	turn.ComparisonDetails = params.ComparisonDetails
	turn.RequestID = params.RequestID

	if err := s.conversations.AppendTurn(ctx, params.ConversationID, turn); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// SubmitFeedback records a rating against the turn behind a step.
//
// The thread-store write is authoritative and must succeed. The
// conversation-store mirror is best-effort: a failure is logged and queued
// for reconciliation, never surfaced to the caller.
func (s *ServiceImpl) SubmitFeedback(ctx context.Context, stepID string, vote int, comment string) (string, error) {
	step, err := s.threads.GetStep(ctx, stepID)
	if err != nil {
		return "", err
	}

	messageID, err := step.FeedbackMessageID()
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("step %s cannot anchor feedback", stepID),
			err,
			"",
		)
	}
	if messageID == "" {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("step %s has no originating message", stepID),
			nil,
			"",
		)
	}

	if err := s.threads.UpsertFeedbackEntry(ctx, step.ThreadID, thread.FeedbackEntry{
		MessageID:   messageID,
		UserMessage: step.Input,
		Value:       vote,
		Comment:     comment,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("record feedback entry: %w", err)
	}

	// A zero vote is the UI's thumbs-down signal; the conversation store
	// records it as -1. Every other value passes through unchanged.
	mirrorVote := vote
	if mirrorVote == 0 {
		mirrorVote = -1
	}
	s.mirror(ctx, outbox.NewMirrorFeedbackTask(step.ThreadID, messageID, mirrorVote, comment), func(ctx context.Context) error {
		return s.conversations.SetFeedback(ctx, step.ThreadID, messageID, mirrorVote, comment)
	})

	s.announceFeedback(step.ThreadID, messageID, vote, comment)

	return messageID, nil
}

// announceFeedback reports recorded feedback to the configured webhook.
// Delivery runs detached from the request and is best effort.
func (s *ServiceImpl) announceFeedback(conversationID, messageID string, vote int, comment string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.notifier.NotifyFeedback(ctx, conversationID, messageID, vote, comment); err != nil {
			s.log.Warn().Err(err).Str("message_id", messageID).Msg("feedback notification failed")
		}
	}()
}

// RetractFeedback removes a feedback entry and resets the mirrored turn.
func (s *ServiceImpl) RetractFeedback(ctx context.Context, messageID string) (bool, error) {
	threadID, found, err := s.threads.RemoveFeedbackEntry(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("remove feedback entry: %w", err)
	}
	if !found {
		return false, nil
	}

	s.mirror(ctx, outbox.NewClearFeedbackTask(threadID, messageID), func(ctx context.Context) error {
		return s.conversations.ResetFeedback(ctx, threadID, messageID)
	})

	return true, nil
}

// DeleteConversation deletes the thread with its steps, then the paired
// conversation record. The conversation-side delete follows the same
// best-effort policy as the feedback mirror.
func (s *ServiceImpl) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.threads.DeleteThreadAndSteps(ctx, conversationID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	s.mirror(ctx, outbox.NewDeleteConversationTask(conversationID), func(ctx context.Context) error {
		return s.conversations.Delete(ctx, conversationID)
	})

	return nil
}

// ApplyMirrorTask replays one queued conversation-store write.
func (s *ServiceImpl) ApplyMirrorTask(ctx context.Context, task *outbox.Task) error {
	switch task.Kind {
	case outbox.TaskKindMirrorFeedback:
		return s.conversations.SetFeedback(ctx, task.ConversationID, task.MessageID, task.Vote, task.Comment)
	case outbox.TaskKindClearFeedback:
		return s.conversations.ResetFeedback(ctx, task.ConversationID, task.MessageID)
	case outbox.TaskKindDeleteConversation:
		return s.conversations.Delete(ctx, task.ConversationID)
	default:
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown mirror task kind %q", task.Kind),
			nil,
			"",
		)
	}
}

// mirror runs a conversation-store write that shadows an already-committed
// thread-store write.
func (s *ServiceImpl) mirror(ctx context.Context, task *outbox.Task, write func(context.Context) error) {
	if err := write(ctx); err != nil {
		s.mirrorFailed(ctx, err, task)
		return
	}
	metrics.RecordMirrorWrite(string(task.Kind), "ok")
}

// mirrorFailed records a mirror divergence and, when the failure is
// retryable, hands the write to the outbox for reconciliation.
func (s *ServiceImpl) mirrorFailed(ctx context.Context, mirrorErr error, task *outbox.Task) {
	severity := domainErrors.Classify(mirrorErr)
	metrics.RecordMirrorWrite(string(task.Kind), "failed")

	queued := false
	if severity.IsRetryable() {
		if err := s.mirrorQueue.Enqueue(ctx, task); err != nil {
			s.log.Error().
				Err(err).
				Str("kind", string(task.Kind)).
				Str("conversation_id", task.ConversationID).
				Msg("enqueue mirror task failed")
		} else {
			queued = true
			metrics.RecordMirrorWrite(string(task.Kind), "queued")
		}
	}

	s.log.Error().
		Err(mirrorErr).
		Str("kind", string(task.Kind)).
		Str("conversation_id", task.ConversationID).
		Str("message_id", task.MessageID).
		Str("severity", severity.String()).
		Bool("queued", queued).
		Msg("conversation mirror write failed, stores diverged")
}

func (s *ServiceImpl) sessionSettings(ctx context.Context, sessionID string) session.Settings {
	settings := session.DefaultSettings()
	if s.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return settings
	}

	saved, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("session settings unavailable, using defaults")
		return settings
	}
	if saved != nil {
		settings = *saved
	}
	return settings
}

func (s *ServiceImpl) translateNeeded(settings session.Settings) bool {
	return s.translator != nil && settings.Language != "" && settings.Language != translate.LanguageEnglish
}

// translateText converts text between languages, falling back to the
// original text when the translation service fails.
func (s *ServiceImpl) translateText(ctx context.Context, text, from, to string) string {
	translated, err := s.translator.Translate(ctx, text, from, to)
	if err != nil {
		s.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("translation failed, using original text")
		return text
	}
	return translated
}
