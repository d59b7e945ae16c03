package requests

// SubmitFeedbackRequest models POST /v1/feedback input. Value is a pointer
// so the zero vote, the UI's thumbs down, still passes the required check.
type SubmitFeedbackRequest struct {
	StepID  string `json:"step_id" binding:"required"`
	Value   *int   `json:"value" binding:"required"`
	Comment string `json:"comment,omitempty"`
}
