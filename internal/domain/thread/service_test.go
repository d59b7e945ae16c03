package thread_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"jan-server/services/assistant-api/internal/domain/thread"
	"jan-server/services/assistant-api/internal/utils/identity"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// fakeRepository keeps threads and steps in memory with version checks so
// the service's conflict-retry loops can be exercised.
type fakeRepository struct {
	mu      sync.Mutex
	threads map[string]*thread.Thread
	steps   map[string]*thread.Step

	replaceCalls    int
	conflictReplace int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		threads: make(map[string]*thread.Thread),
		steps:   make(map[string]*thread.Step),
	}
}

func (f *fakeRepository) FindThreadByPublicID(ctx context.Context, publicID string) (*thread.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.threads[publicID]
	if !ok {
		return nil, nil
	}
	return copyThread(stored), nil
}

func (f *fakeRepository) FindThreadByFeedbackMessageID(ctx context.Context, messageID string) (*thread.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.threads {
		if stored.FindFeedback(messageID) != nil {
			return copyThread(stored), nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateThread(ctx context.Context, t *thread.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.threads[t.PublicID]; ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			fmt.Sprintf("thread %s already exists", t.PublicID), nil, "")
	}
	f.threads[t.PublicID] = copyThread(t)
	return nil
}

func (f *fakeRepository) ReplaceThread(ctx context.Context, t *thread.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if f.conflictReplace > 0 {
		f.conflictReplace--
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"version check failed", nil, "")
	}
	stored, ok := f.threads[t.PublicID]
	if !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"thread not found", nil, "")
	}
	if stored.Version != t.Version {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"version check failed", nil, "")
	}
	updated := copyThread(t)
	updated.Version++
	f.threads[t.PublicID] = updated
	return nil
}

func (f *fakeRepository) DeleteThread(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.threads[publicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"thread not found", nil, "")
	}
	delete(f.threads, publicID)
	return nil
}

func (f *fakeRepository) ListThreads(ctx context.Context, userID string, limit, offset int) ([]thread.Thread, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]thread.Thread, 0, len(f.threads))
	for _, stored := range f.threads {
		if userID != "" && stored.UserID != userID {
			continue
		}
		all = append(all, *copyThread(stored))
	}
	return all, int64(len(all)), nil
}

func (f *fakeRepository) SaveStep(ctx context.Context, step *thread.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dup := *step
	f.steps[step.PublicID] = &dup
	return nil
}

func (f *fakeRepository) FindStepByPublicID(ctx context.Context, publicID string) (*thread.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.steps[publicID]
	if !ok {
		return nil, nil
	}
	dup := *stored
	return &dup, nil
}

func (f *fakeRepository) ListStepsByThreadID(ctx context.Context, threadID string) ([]thread.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []thread.Step
	for _, stored := range f.steps {
		if stored.ThreadID == threadID {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (f *fakeRepository) DeleteStep(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.steps, publicID)
	return nil
}

func copyThread(t *thread.Thread) *thread.Thread {
	dup := *t
	dup.Feedback = make([]thread.FeedbackEntry, len(t.Feedback))
	copy(dup.Feedback, t.Feedback)
	return &dup
}

func TestService_RecordStep(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	step, err := svc.RecordStep(context.Background(), thread.RecordStepParams{
		StepID:   "step_1",
		ThreadID: "t1",
		ParentID: "msg_1",
		Name:     "on_message",
		Input:    "hello",
		Output:   "hi there",
	})
	if err != nil {
		t.Fatalf("RecordStep() error = %v", err)
	}
	if step.Kind != thread.StepKindMessage {
		t.Errorf("Kind = %v, want %v", step.Kind, thread.StepKindMessage)
	}

	stored, _ := repo.FindStepByPublicID(context.Background(), "step_1")
	if stored == nil {
		t.Fatal("step not persisted")
	}
	if stored.Kind != thread.StepKindMessage {
		t.Errorf("stored kind = %v, want resolved kind persisted", stored.Kind)
	}
}

func TestService_RecordStep_UnknownKind(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	_, err := svc.RecordStep(context.Background(), thread.RecordStepParams{
		StepID:   "step_1",
		ThreadID: "t1",
		Name:     "on_chat_start",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("RecordStep() error = %v, want validation error", err)
	}
	if len(repo.steps) != 0 {
		t.Error("step persisted despite unrecognized kind")
	}
}

func TestService_GetStep_NotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	_, err := svc.GetStep(context.Background(), "step_404")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("GetStep() error = %v, want not found", err)
	}
}

func TestService_GetThread_NotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	_, err := svc.GetThread(context.Background(), "t404")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("GetThread() error = %v, want not found", err)
	}
}

func TestService_UpsertFeedbackEntry_CreatesThreadLazily(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{
		MessageID: "m1",
		Value:     0,
		Comment:   "bad",
	})
	if err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}

	stored := repo.threads["t1"]
	if stored == nil {
		t.Fatal("thread not created on first feedback write")
	}
	if len(stored.Feedback) != 1 || stored.Feedback[0].MessageID != "m1" {
		t.Errorf("stored feedback = %+v, want one entry for m1", stored.Feedback)
	}
}

func TestService_UpsertFeedbackEntry_StampsOwnerAndName(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	ctx := identity.WithSubject(context.Background(), "user-1")
	err := svc.UpsertFeedbackEntry(ctx, "t1", thread.FeedbackEntry{
		MessageID:   "m1",
		UserMessage: "What is the leave policy?\nAsking for next month.",
		Value:       1,
	})
	if err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}

	stored := repo.threads["t1"]
	if stored.UserID != "user-1" {
		t.Errorf("UserID = %q, want owner stamped from context", stored.UserID)
	}
	if stored.Name != "What is the leave policy?" {
		t.Errorf("Name = %q, want first line of the rated message", stored.Name)
	}

	// Later writes never move the thread to another owner.
	other := identity.WithSubject(context.Background(), "user-2")
	if err := svc.UpsertFeedbackEntry(other, "t1", thread.FeedbackEntry{MessageID: "m2", Value: 0}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}
	if stored := repo.threads["t1"]; stored.UserID != "user-1" {
		t.Errorf("UserID = %q, want creation-time owner kept", stored.UserID)
	}
}

func TestService_ListThreads_FiltersByUser(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	for _, seed := range []struct{ subject, threadID, messageID string }{
		{"user-1", "t1", "m1"},
		{"user-2", "t2", "m2"},
	} {
		ctx := identity.WithSubject(context.Background(), seed.subject)
		if err := svc.UpsertFeedbackEntry(ctx, seed.threadID, thread.FeedbackEntry{MessageID: seed.messageID, Value: 1}); err != nil {
			t.Fatalf("UpsertFeedbackEntry() error = %v", err)
		}
	}

	threads, total, err := svc.ListThreads(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if total != 1 || len(threads) != 1 || threads[0].PublicID != "t1" {
		t.Errorf("ListThreads(user-1) = %d threads, total %d, want only t1", len(threads), total)
	}

	_, allTotal, err := svc.ListThreads(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if allTotal != 2 {
		t.Errorf("unscoped total = %d, want 2", allTotal)
	}
}

func TestService_UpsertFeedbackEntry_OverwritesSameMessage(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 0}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}
	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 1, Comment: "better"}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}

	stored := repo.threads["t1"]
	if len(stored.Feedback) != 1 {
		t.Fatalf("feedback length = %d, want 1 entry per message", len(stored.Feedback))
	}
	if stored.Feedback[0].Value != 1 || stored.Feedback[0].Comment != "better" {
		t.Errorf("entry = %+v, want re-vote applied", stored.Feedback[0])
	}
}

func TestService_UpsertFeedbackEntry_RetriesOnConflict(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 1}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}

	repo.conflictReplace = 2
	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m2", Value: 0}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v, want success after retries", err)
	}
	if len(repo.threads["t1"].Feedback) != 2 {
		t.Errorf("feedback length = %d, want 2", len(repo.threads["t1"].Feedback))
	}
}

func TestService_RemoveFeedbackEntry(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 1}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}

	threadID, found, err := svc.RemoveFeedbackEntry(context.Background(), "m1")
	if err != nil {
		t.Fatalf("RemoveFeedbackEntry() error = %v", err)
	}
	if !found {
		t.Fatal("RemoveFeedbackEntry() found = false, want true")
	}
	if threadID != "t1" {
		t.Errorf("threadID = %v, want t1", threadID)
	}
	if len(repo.threads["t1"].Feedback) != 0 {
		t.Errorf("feedback length = %d, want 0", len(repo.threads["t1"].Feedback))
	}
}

func TestService_RemoveFeedbackEntry_AbsentIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 1}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}
	before := len(repo.threads["t1"].Feedback)

	threadID, found, err := svc.RemoveFeedbackEntry(context.Background(), "m404")
	if err != nil {
		t.Fatalf("RemoveFeedbackEntry() error = %v", err)
	}
	if found || threadID != "" {
		t.Errorf("RemoveFeedbackEntry() = (%q, %v), want (\"\", false)", threadID, found)
	}
	if len(repo.threads["t1"].Feedback) != before {
		t.Error("feedback mutated on absent message id")
	}
}

func TestService_DeleteThreadAndSteps(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	if err := svc.UpsertFeedbackEntry(context.Background(), "t1", thread.FeedbackEntry{MessageID: "m1", Value: 1}); err != nil {
		t.Fatalf("UpsertFeedbackEntry() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		_, err := svc.RecordStep(context.Background(), thread.RecordStepParams{
			StepID:   fmt.Sprintf("step_%d", i),
			ThreadID: "t1",
			ParentID: fmt.Sprintf("msg_%d", i),
			Name:     "on_message",
		})
		if err != nil {
			t.Fatalf("RecordStep() error = %v", err)
		}
	}
	// A step belonging to another thread must survive.
	if _, err := svc.RecordStep(context.Background(), thread.RecordStepParams{
		StepID:   "step_other",
		ThreadID: "t2",
		ParentID: "msg_other",
		Name:     "on_message",
	}); err != nil {
		t.Fatalf("RecordStep() error = %v", err)
	}

	if err := svc.DeleteThreadAndSteps(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteThreadAndSteps() error = %v", err)
	}

	if _, ok := repo.threads["t1"]; ok {
		t.Error("thread still present after delete")
	}
	steps, _ := repo.ListStepsByThreadID(context.Background(), "t1")
	if len(steps) != 0 {
		t.Errorf("steps remaining = %d, want 0", len(steps))
	}
	if _, ok := repo.steps["step_other"]; !ok {
		t.Error("unrelated step deleted")
	}
}

func TestService_DeleteThreadAndSteps_NotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := thread.NewService(repo)

	err := svc.DeleteThreadAndSteps(context.Background(), "t404")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("DeleteThreadAndSteps() error = %v, want not found", err)
	}
}
