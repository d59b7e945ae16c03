package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/conversation"
	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// MockChatService is a mock implementation of chat.Service for testing.
// Implements the actual chat.Service interface.
type MockChatService struct {
	ConverseFunc           func(ctx context.Context, params chat.ConverseParams) (*chat.ConverseResult, error)
	ConverseAudioFunc      func(ctx context.Context, params chat.ConverseAudioParams) (*chat.ConverseAudioResult, error)
	CreateConversationFunc func(ctx context.Context, conversationID string) (*conversation.Conversation, error)
	GetContextFunc         func(ctx context.Context, conversationID string) ([]conversation.Message, error)
	RecordTurnFunc         func(ctx context.Context, params chat.RecordTurnParams) error
	SubmitFeedbackFunc     func(ctx context.Context, stepID string, vote int, comment string) (string, error)
	RetractFeedbackFunc    func(ctx context.Context, messageID string) (bool, error)
	DeleteConversationFunc func(ctx context.Context, conversationID string) error
	ApplyMirrorTaskFunc    func(ctx context.Context, task *outbox.Task) error
}

func (m *MockChatService) Converse(ctx context.Context, params chat.ConverseParams) (*chat.ConverseResult, error) {
	if m.ConverseFunc != nil {
		return m.ConverseFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockChatService) ConverseAudio(ctx context.Context, params chat.ConverseAudioParams) (*chat.ConverseAudioResult, error) {
	if m.ConverseAudioFunc != nil {
		return m.ConverseAudioFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockChatService) CreateConversation(ctx context.Context, conversationID string) (*conversation.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *MockChatService) GetContext(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	if m.GetContextFunc != nil {
		return m.GetContextFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *MockChatService) RecordTurn(ctx context.Context, params chat.RecordTurnParams) error {
	if m.RecordTurnFunc != nil {
		return m.RecordTurnFunc(ctx, params)
	}
	return nil
}

func (m *MockChatService) SubmitFeedback(ctx context.Context, stepID string, vote int, comment string) (string, error) {
	if m.SubmitFeedbackFunc != nil {
		return m.SubmitFeedbackFunc(ctx, stepID, vote, comment)
	}
	return "", nil
}

func (m *MockChatService) RetractFeedback(ctx context.Context, messageID string) (bool, error) {
	if m.RetractFeedbackFunc != nil {
		return m.RetractFeedbackFunc(ctx, messageID)
	}
	return false, nil
}

func (m *MockChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(ctx, conversationID)
	}
	return nil
}

func (m *MockChatService) ApplyMirrorTask(ctx context.Context, task *outbox.Task) error {
	if m.ApplyMirrorTaskFunc != nil {
		return m.ApplyMirrorTaskFunc(ctx, task)
	}
	return nil
}

func setupChatTestRouter(handler *handlers.ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	chatGroup := r.Group("/v1/chat")
	{
		chatGroup.POST("/messages", handler.SendMessage)
		chatGroup.POST("/audio", handler.SendAudio)
	}

	return r
}

func TestChatHandler_SendMessage(t *testing.T) {
	var gotParams chat.ConverseParams
	mockService := &MockChatService{
		ConverseFunc: func(ctx context.Context, params chat.ConverseParams) (*chat.ConverseResult, error) {
			gotParams = params
			return &chat.ConverseResult{
				ConversationID: "conv-123",
				MessageID:      "msg-1",
				StepID:         "step-1",
				Answer:         "hello back",
				Persisted:      true,
			}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, nil, nil, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := `{"message": "hello", "conversation_id": "conv-123", "session_id": "sess-9", "language": "hi"}`
	req, _ := http.NewRequest("POST", "/v1/chat/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if gotParams.ConversationID != "conv-123" {
		t.Errorf("Expected conversation id 'conv-123', got %v", gotParams.ConversationID)
	}
	if gotParams.Query != "hello" {
		t.Errorf("Expected query 'hello', got %v", gotParams.Query)
	}
	if gotParams.Language != "hi" {
		t.Errorf("Expected language 'hi', got %v", gotParams.Language)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["answer"] != "hello back" {
		t.Errorf("Expected answer 'hello back', got %v", response["answer"])
	}
	if response["persisted"] != true {
		t.Errorf("Expected persisted true, got %v", response["persisted"])
	}
}

func TestChatHandler_SendMessage_InvalidBody(t *testing.T) {
	handler := handlers.NewChatHandler(&MockChatService{}, nil, nil, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/chat/messages", bytes.NewBufferString(`{"conversation_id": "conv-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	errorBody, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error object, got %T", response["error"])
	}
	if errorBody["type"] != "VALIDATION" {
		t.Errorf("Expected error type 'VALIDATION', got %v", errorBody["type"])
	}
}

func TestChatHandler_SendMessage_ServingFailure(t *testing.T) {
	mockService := &MockChatService{
		ConverseFunc: func(ctx context.Context, params chat.ConverseParams) (*chat.ConverseResult, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "serving endpoint failed", nil, "serving-call")
		},
	}

	handler := handlers.NewChatHandler(mockService, nil, nil, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/chat/messages", bytes.NewBufferString(`{"message": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	errorBody, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error object, got %T", response["error"])
	}
	if errorBody["message"] != "failed to answer message" {
		t.Errorf("Expected generic message, got %v", errorBody["message"])
	}
	if errorBody["type"] != "EXTERNAL" {
		t.Errorf("Expected error type 'EXTERNAL', got %v", errorBody["type"])
	}
}

func newAudioRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "turn.wav")
	if err != nil {
		t.Fatalf("Failed to build form file: %v", err)
	}
	if _, err := part.Write([]byte("RIFF fake audio bytes")); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req, _ := http.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestChatHandler_SendAudio(t *testing.T) {
	var gotParams chat.ConverseAudioParams
	mockService := &MockChatService{
		ConverseAudioFunc: func(ctx context.Context, params chat.ConverseAudioParams) (*chat.ConverseAudioResult, error) {
			gotParams = params
			return &chat.ConverseAudioResult{
				ConverseResult: chat.ConverseResult{
					ConversationID: "conv-123",
					Answer:         "heard you",
					Persisted:      true,
				},
				Transcript: "what is the claim status",
				Locale:     "en-IN",
			}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, nil, nil, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req := newAudioRequest(t, "/v1/chat/audio", map[string]string{
		"conversation_id": "conv-123",
		"session_id":      "sess-9",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if gotParams.ConversationID != "conv-123" {
		t.Errorf("Expected conversation id 'conv-123', got %v", gotParams.ConversationID)
	}
	if len(gotParams.Audio) == 0 {
		t.Error("Expected audio bytes to reach the service")
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["transcript"] != "what is the claim status" {
		t.Errorf("Expected transcript, got %v", response["transcript"])
	}
	if response["answer"] != "heard you" {
		t.Errorf("Expected answer 'heard you', got %v", response["answer"])
	}
	if _, present := response["audio"]; present {
		t.Error("Expected no audio field without speak=true")
	}
}

func TestChatHandler_SendAudio_MissingFile(t *testing.T) {
	handler := handlers.NewChatHandler(&MockChatService{}, nil, nil, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/chat/audio", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_SendAudio_SpeaksReply(t *testing.T) {
	mockService := &MockChatService{
		ConverseAudioFunc: func(ctx context.Context, params chat.ConverseAudioParams) (*chat.ConverseAudioResult, error) {
			return &chat.ConverseAudioResult{
				ConverseResult: chat.ConverseResult{
					ConversationID: "conv-123",
					Answer:         "spoken answer",
					Persisted:      true,
				},
				Transcript: "hello",
			}, nil
		},
	}
	synth := &MockSynthesizer{
		SynthesizeFunc: func(ctx context.Context, text, voice string) ([]byte, error) {
			if text != "spoken answer" {
				t.Errorf("Expected synthesis of the answer, got %q", text)
			}
			if voice != "en-US-AvaMultilingualNeural" {
				t.Errorf("Expected the session voice, got %q", voice)
			}
			return []byte("fake-wav"), nil
		},
	}
	sessions := &MockSessionStore{
		GetFunc: func(ctx context.Context, sessionID string) (*session.Settings, error) {
			return &session.Settings{Language: "en", Voice: "en-US-AvaMultilingualNeural"}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, synth, sessions, zerolog.Nop())
	router := setupChatTestRouter(handler)

	req := newAudioRequest(t, "/v1/chat/audio?speak=true", map[string]string{
		"session_id": "sess-9",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	wantAudio := base64.StdEncoding.EncodeToString([]byte("fake-wav"))
	if response["audio"] != wantAudio {
		t.Errorf("Expected base64 audio %q, got %v", wantAudio, response["audio"])
	}
}
