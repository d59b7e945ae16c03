package conversation_test

import (
	"context"
	"fmt"
	"testing"

	"jan-server/services/assistant-api/internal/domain/conversation"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// fakeRepository keeps records in memory with real version checks so the
// service's conflict-retry loops can be exercised.
type fakeRepository struct {
	records map[string]*conversation.Conversation

	replaceCalls int

	failFindWith    error
	conflictReplace int // fail this many Replace calls with a conflict
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*conversation.Conversation)}
}

func (f *fakeRepository) conflictErr(ctx context.Context, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, message, nil, "")
}

func (f *fakeRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	if f.failFindWith != nil {
		return nil, f.failFindWith
	}
	stored, ok := f.records[publicID]
	if !ok {
		return nil, nil
	}
	return copyConversation(stored), nil
}

func (f *fakeRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	if _, ok := f.records[conv.PublicID]; ok {
		return f.conflictErr(ctx, fmt.Sprintf("conversation %s already exists", conv.PublicID))
	}
	f.records[conv.PublicID] = copyConversation(conv)
	return nil
}

func (f *fakeRepository) Replace(ctx context.Context, conv *conversation.Conversation) error {
	f.replaceCalls++
	if f.conflictReplace > 0 {
		f.conflictReplace--
		return f.conflictErr(ctx, "version check failed")
	}
	stored, ok := f.records[conv.PublicID]
	if !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
	}
	if stored.Version != conv.Version {
		return f.conflictErr(ctx, "version check failed")
	}
	updated := copyConversation(conv)
	updated.Version++
	f.records[conv.PublicID] = updated
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, publicID string) error {
	if _, ok := f.records[publicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
	}
	delete(f.records, publicID)
	return nil
}

func copyConversation(conv *conversation.Conversation) *conversation.Conversation {
	dup := *conv
	dup.Turns = make([]conversation.Turn, len(conv.Turns))
	copy(dup.Turns, conv.Turns)
	return &dup
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	conv, err := svc.Create(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if conv.PublicID != "c1" {
		t.Errorf("PublicID = %v, want c1", conv.PublicID)
	}

	if _, err := svc.Create(context.Background(), "c1"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Errorf("Create() on existing id error = %v, want conflict", err)
	}
}

func TestService_EnsureExists(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	conv, err := svc.EnsureExists(context.Background(), "c1")
	if err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if len(conv.Turns) != 0 {
		t.Errorf("Turns length = %d, want 0", len(conv.Turns))
	}

	// Second call is a no-op returning the stored record.
	again, err := svc.EnsureExists(context.Background(), "c1")
	if err != nil {
		t.Fatalf("EnsureExists() second call error = %v", err)
	}
	if again.PublicID != "c1" || again.Version != conv.Version {
		t.Errorf("second EnsureExists() = %+v, want same stored record", again)
	}
}

func TestService_EnsureExists_LostCreationRace(t *testing.T) {
	repo := newFakeRepository()

	// Another writer claims the id between our absent read and our insert.
	// The retry must pick up their record instead of failing.
	competing := conversation.NewConversation("c1")
	competing.AppendTurn(conversation.NewTurn("m1", "hello", "hi"))
	raced := false

	svc := conversation.NewService(&racingRepository{inner: repo, competing: competing, raced: &raced})

	conv, err := svc.EnsureExists(context.Background(), "c1")
	if err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if !raced {
		t.Fatal("expected the competing writer to win the insert")
	}
	if len(conv.Turns) != 1 {
		t.Errorf("EnsureExists() returned %d turns, want the competing writer's record", len(conv.Turns))
	}
}

// racingRepository injects a competing record after the first read so Create
// observes a conflict.
type racingRepository struct {
	inner     *fakeRepository
	competing *conversation.Conversation
	raced     *bool
}

func (r *racingRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	return r.inner.FindByPublicID(ctx, publicID)
}

func (r *racingRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	if !*r.raced {
		*r.raced = true
		r.inner.records[r.competing.PublicID] = copyConversation(r.competing)
	}
	return r.inner.Create(ctx, conv)
}

func (r *racingRepository) Replace(ctx context.Context, conv *conversation.Conversation) error {
	return r.inner.Replace(ctx, conv)
}

func (r *racingRepository) Delete(ctx context.Context, publicID string) error {
	return r.inner.Delete(ctx, publicID)
}

func TestService_History_AbsentIsPureRead(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	messages, err := svc.History(context.Background(), "c1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("History() length = %d, want 0", len(messages))
	}
	if _, ok := repo.records["c1"]; ok {
		t.Error("History() created a record, want no mutation on read")
	}
}

func TestService_History_PropagatesStoreError(t *testing.T) {
	repo := newFakeRepository()
	repo.failFindWith = platformerrors.NewError(
		context.Background(),
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"connection refused",
		nil,
		"",
	)
	svc := conversation.NewService(repo)

	_, err := svc.History(context.Background(), "c1")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError) {
		t.Errorf("History() error = %v, want database error", err)
	}
}

func TestService_History_ReturnsRolePairs(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "hello", "hi there")); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	messages, err := svc.History(context.Background(), "c1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	expected := []conversation.Message{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi there"},
	}
	if len(messages) != len(expected) {
		t.Fatalf("History() length = %d, want %d", len(messages), len(expected))
	}
	for i := range messages {
		if messages[i] != expected[i] {
			t.Errorf("History()[%d] = %+v, want %+v", i, messages[i], expected[i])
		}
	}
}

func TestService_AppendTurn_NotFoundWhenAbsent(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	err := svc.AppendTurn(context.Background(), "missing", conversation.NewTurn("m1", "hello", "hi"))
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("AppendTurn() error = %v, want not found", err)
	}
}

func TestService_AppendTurn_RetriesOnConflict(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	repo.conflictReplace = 2
	if err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "hello", "hi")); err != nil {
		t.Fatalf("AppendTurn() error = %v, want success after retries", err)
	}
	if repo.replaceCalls != 3 {
		t.Errorf("replace calls = %d, want 3 (two conflicts then success)", repo.replaceCalls)
	}

	stored := repo.records["c1"]
	if len(stored.Turns) != 1 {
		t.Errorf("stored turns = %d, want 1", len(stored.Turns))
	}
}

func TestService_AppendTurn_DuplicateMessageID(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "hello", "hi")); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "again", "still"))
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Errorf("AppendTurn() duplicate error = %v, want conflict", err)
	}
}

func TestService_SetFeedback(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "hello", "hi")); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	if err := svc.SetFeedback(context.Background(), "c1", "m1", -1, "bad"); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	turn := repo.records["c1"].FindTurn("m1")
	if turn.FeedbackVote != -1 || turn.FeedbackText != "bad" {
		t.Errorf("stored feedback = (%d, %q), want (-1, \"bad\")", turn.FeedbackVote, turn.FeedbackText)
	}
}

func TestService_SetFeedback_TurnNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	err := svc.SetFeedback(context.Background(), "c1", "m404", 1, "good")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("SetFeedback() error = %v, want not found", err)
	}
}

func TestService_ResetFeedback(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := svc.AppendTurn(context.Background(), "c1", conversation.NewTurn("m1", "hello", "hi")); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if err := svc.SetFeedback(context.Background(), "c1", "m1", 1, "great"); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	if err := svc.ResetFeedback(context.Background(), "c1", "m1"); err != nil {
		t.Fatalf("ResetFeedback() error = %v", err)
	}

	turn := repo.records["c1"].FindTurn("m1")
	if turn.FeedbackVote != 0 || turn.FeedbackText != "" {
		t.Errorf("stored feedback = (%d, %q), want (0, \"\")", turn.FeedbackVote, turn.FeedbackText)
	}
}

func TestService_Delete(t *testing.T) {
	repo := newFakeRepository()
	svc := conversation.NewService(repo)

	if _, err := svc.EnsureExists(context.Background(), "c1"); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := svc.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.records["c1"]; ok {
		t.Error("record still present after Delete()")
	}

	err := svc.Delete(context.Background(), "c1")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("Delete() on absent error = %v, want not found", err)
	}
}
