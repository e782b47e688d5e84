package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/classify"
	"github.com/bnema/support-agent-cli/internal/contextmgr"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports/mocks"
	"github.com/bnema/support-agent-cli/internal/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

func newTestEngine(history *mocks.MockHistoryStore) *Engine {
	return NewEngine(
		history,
		classify.New(classify.DefaultCatalog()),
		respond.New(respond.DefaultCatalog()),
		contextmgr.New(contextmgr.DefaultOptions()),
		fixedClock{},
		zap.NewNop(),
	)
}

func newTurn(t *testing.T, userID, query string) *domain.SessionState {
	t.Helper()
	state := &domain.SessionState{UserID: userID, ThreadID: "thread-1", Metadata: map[string]any{}}
	state.BeginTurn()
	if query != "" {
		state.AppendMessage(domain.Message{Role: domain.RoleUser, Content: query, Timestamp: fixedNow})
	}
	return state
}

func TestRunPasswordResetCompletesAndSavesHistory(t *testing.T) {
	t.Parallel()

	history := mocks.NewMockHistoryStore(t)
	history.EXPECT().Load(mockAnyContext(), "user-1").Return([]domain.HistoryEntry{}, nil)

	var saved domain.HistoryEntry
	history.EXPECT().Append(mockAnyContext(), "user-1", mock.AnythingOfType("domain.HistoryEntry")).
		Run(func(_ context.Context, _ string, entry domain.HistoryEntry) { saved = entry }).
		Return(nil)

	state := newTurn(t, "user-1", "How do I reset my password?")
	result, err := newTestEngine(history).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []Stage{
		StageFetchHistory, StageProcessQuery, StageGenerateResponse, StageCheckHITL,
		StageSaveInteraction, StageTrimContext, StageDone,
	}, result.Path)
	assert.Equal(t, StageDone, result.Terminal)
	assert.False(t, result.Escalated())
	require.NotNil(t, result.Response)
	assert.Equal(t, domain.CategoryAuthentication, result.Response.Category)
	assert.False(t, state.RequiresReview)

	assert.Equal(t, "How do I reset my password?", saved.Query)
	assert.Equal(t, result.Response.Text, saved.Resolution)
	assert.Equal(t, "authentication", saved.Meta("category"))
	assert.Equal(t, "thread-1", saved.Meta("thread_id"))
	assert.Equal(t, domain.FormatTimestamp(fixedNow), saved.Timestamp)

	assert.Len(t, state.History, 1)
	assert.Equal(t, true, state.Metadata[domain.MetaHistoryLoaded])
	assert.Equal(t, 0, state.Metadata[domain.MetaHistoryCount])
	assert.Equal(t, true, state.Metadata[domain.MetaInteractionSaved])
	assert.NotContains(t, state.Metadata, domain.MetaHITLRequested)
}

func TestRunEscalatesWithoutSaving(t *testing.T) {
	t.Parallel()

	history := mocks.NewMockHistoryStore(t)
	history.EXPECT().Load(mockAnyContext(), "user-1").Return(nil, nil)

	state := newTurn(t, "user-1", "I want a refund for last month")
	result, err := newTestEngine(history).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []Stage{
		StageFetchHistory, StageProcessQuery, StageGenerateResponse, StageCheckHITL, StageEscalated,
	}, result.Path)
	assert.True(t, result.Escalated())
	assert.True(t, state.RequiresReview)
	assert.Nil(t, state.ReviewDecision)
	assert.Equal(t, true, state.Metadata[domain.MetaHITLRequested])
	assert.Equal(t, `escalation trigger "refund"`, state.Metadata[domain.MetaHITLReason])
	assert.Equal(t, `escalation trigger "refund"`, result.Reason)
	assert.Empty(t, state.History)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunWithoutUserSkipsStore(t *testing.T) {
	t.Parallel()

	history := mocks.NewMockHistoryStore(t)

	state := newTurn(t, "", "tell me about your company")
	result, err := newTestEngine(history).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, StageDone, result.Terminal)
	require.NotNil(t, result.Response)
	assert.Equal(t, domain.SourceClarification, result.Response.Source)
	assert.NotContains(t, state.Metadata, domain.MetaHistoryLoaded)
	assert.NotContains(t, state.Metadata, domain.MetaInteractionSaved)
}

func TestRunWithoutQueryProducesNoResponse(t *testing.T) {
	t.Parallel()

	history := mocks.NewMockHistoryStore(t)
	history.EXPECT().Load(mockAnyContext(), "user-1").Return(nil, nil)

	state := newTurn(t, "user-1", "")
	result, err := newTestEngine(history).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, StageDone, result.Terminal)
	assert.Nil(t, result.Response)
	assert.Empty(t, state.Messages)
}

func TestRunOnlyAnswersMessagesFromThisTurn(t *testing.T) {
	t.Parallel()

	history := mocks.NewMockHistoryStore(t)
	history.EXPECT().Load(mockAnyContext(), "user-1").Return(nil, nil)

	state := &domain.SessionState{UserID: "user-1", ThreadID: "thread-1", Metadata: map[string]any{}}
	state.AppendMessage(domain.Message{Role: domain.RoleUser, Content: "How do I reset my password?", Timestamp: fixedNow})
	state.BeginTurn()

	result, err := newTestEngine(history).Run(context.Background(), state)
	require.NoError(t, err)

	assert.Nil(t, result.Response)
	assert.NotContains(t, state.Metadata, domain.MetaCurrentQuery)
}

func TestRunStoreFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")

	t.Run("load", func(t *testing.T) {
		t.Parallel()
		history := mocks.NewMockHistoryStore(t)
		history.EXPECT().Load(mockAnyContext(), "user-1").Return(nil, boom)

		result, err := newTestEngine(history).Run(context.Background(), newTurn(t, "user-1", "How do I reset my password?"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []Stage{StageFetchHistory}, result.Path)
		assert.Nil(t, result.Response)
	})

	t.Run("append", func(t *testing.T) {
		t.Parallel()
		history := mocks.NewMockHistoryStore(t)
		history.EXPECT().Load(mockAnyContext(), "user-1").Return(nil, nil)
		history.EXPECT().Append(mockAnyContext(), "user-1", mock.Anything).Return(boom)

		result, err := newTestEngine(history).Run(context.Background(), newTurn(t, "user-1", "How do I reset my password?"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, StageSaveInteraction, result.Path[len(result.Path)-1])
		assert.Empty(t, result.Terminal)
		assert.NotNil(t, result.Response)
	})
}

func TestRunRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(mocks.NewMockHistoryStore(t))

	_, err := engine.Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	state := &domain.SessionState{UserID: "u", ThreadID: "t"}
	state.Messages = []domain.Message{{Role: "robot", Content: "beep", Timestamp: fixedNow}}
	_, err = engine.Run(context.Background(), state)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStageTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, StageDone.Terminal())
	assert.True(t, StageEscalated.Terminal())
	assert.False(t, StageCheckHITL.Terminal())
}

func mockAnyContext() interface{} {
	return mock.Anything
}
