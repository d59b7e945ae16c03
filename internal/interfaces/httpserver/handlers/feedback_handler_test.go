package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

func setupFeedbackTestRouter(handler *handlers.FeedbackHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/v1/feedback", handler.Submit)
	r.DELETE("/v1/feedback/:message_id", handler.Retract)

	return r
}

func TestFeedbackHandler_Submit(t *testing.T) {
	var gotStepID, gotComment string
	var gotVote int
	mockService := &MockChatService{
		SubmitFeedbackFunc: func(ctx context.Context, stepID string, vote int, comment string) (string, error) {
			gotStepID = stepID
			gotVote = vote
			gotComment = comment
			return "msg-42", nil
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	body := `{"step_id": "step-1", "value": 1, "comment": "helpful"}`
	req, _ := http.NewRequest("POST", "/v1/feedback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if gotStepID != "step-1" {
		t.Errorf("Expected step id 'step-1', got %v", gotStepID)
	}
	if gotVote != 1 {
		t.Errorf("Expected vote 1, got %v", gotVote)
	}
	if gotComment != "helpful" {
		t.Errorf("Expected comment 'helpful', got %v", gotComment)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["message_id"] != "msg-42" {
		t.Errorf("Expected message id 'msg-42', got %v", response["message_id"])
	}
}

func TestFeedbackHandler_Submit_ZeroVote(t *testing.T) {
	submitted := false
	mockService := &MockChatService{
		SubmitFeedbackFunc: func(ctx context.Context, stepID string, vote int, comment string) (string, error) {
			submitted = true
			if vote != 0 {
				t.Errorf("Expected vote 0, got %v", vote)
			}
			return "msg-42", nil
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/feedback", bytes.NewBufferString(`{"step_id": "step-1", "value": 0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !submitted {
		t.Error("Expected a zero vote to reach the service")
	}
}

func TestFeedbackHandler_Submit_MissingValue(t *testing.T) {
	submitted := false
	mockService := &MockChatService{
		SubmitFeedbackFunc: func(ctx context.Context, stepID string, vote int, comment string) (string, error) {
			submitted = true
			return "", nil
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/feedback", bytes.NewBufferString(`{"step_id": "step-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if submitted {
		t.Error("Expected SubmitFeedback not to be called")
	}
}

func TestFeedbackHandler_Submit_UnknownStep(t *testing.T) {
	mockService := &MockChatService{
		SubmitFeedbackFunc: func(ctx context.Context, stepID string, vote int, comment string) (string, error) {
			return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "step not found", nil, "feedback-step-lookup")
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	req, _ := http.NewRequest("POST", "/v1/feedback", bytes.NewBufferString(`{"step_id": "step-x", "value": 1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	errorBody, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error object, got %T", response["error"])
	}
	if errorBody["type"] != "NOT_FOUND" {
		t.Errorf("Expected error type 'NOT_FOUND', got %v", errorBody["type"])
	}
}

func TestFeedbackHandler_Retract(t *testing.T) {
	mockService := &MockChatService{
		RetractFeedbackFunc: func(ctx context.Context, messageID string) (bool, error) {
			if messageID != "msg-42" {
				t.Errorf("Expected message id 'msg-42', got %v", messageID)
			}
			return true, nil
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	req, _ := http.NewRequest("DELETE", "/v1/feedback/msg-42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["removed"] != true {
		t.Errorf("Expected removed true, got %v", response["removed"])
	}
}

func TestFeedbackHandler_Retract_Absent(t *testing.T) {
	mockService := &MockChatService{
		RetractFeedbackFunc: func(ctx context.Context, messageID string) (bool, error) {
			return false, nil
		},
	}

	handler := handlers.NewFeedbackHandler(mockService, zerolog.Nop())
	router := setupFeedbackTestRouter(handler)

	req, _ := http.NewRequest("DELETE", "/v1/feedback/msg-unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["removed"] != false {
		t.Errorf("Expected removed false, got %v", response["removed"])
	}
}
