package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var escalationNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func pendingEscalation(id string, age time.Duration) domain.Escalation {
	return domain.Escalation{
		ID:        domain.EscalationID(id),
		UserID:    "u-1",
		ThreadID:  "t-1",
		Query:     "I want a refund",
		Status:    domain.EscalationPending,
		CreatedAt: escalationNow.Add(-age),
	}
}

func TestEscalationOpenStampsClockAndProposedAction(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(escalationNow).Once()

	var saved domain.Escalation
	repo.EXPECT().Save(mockAnyContext(), mock.AnythingOfType("domain.Escalation")).
		Run(func(_ context.Context, e domain.Escalation) { saved = e }).
		Return(nil).Once()

	svc := NewEscalationService(repo, nil, nil, clock, time.Hour, nil)
	svc.newID = func() domain.EscalationID { return "esc-1" }

	got, err := svc.Open(context.Background(), OpenEscalationCommand{
		UserID:   "u-1",
		ThreadID: "t-1",
		Query:    "I want a refund for order 42",
		Reason:   `escalation trigger "refund"`,
	})
	require.NoError(t, err)

	assert.Equal(t, saved, got)
	assert.Equal(t, domain.EscalationID("esc-1"), got.ID)
	assert.Equal(t, escalationNow, got.CreatedAt)
	assert.Equal(t, domain.EscalationPending, got.Status)
	assert.Equal(t, domain.ProposedAction("I want a refund for order 42"), got.ProposedAction)
}

func TestEscalationOpenWrapsStoreFailure(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(escalationNow)
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(errors.New("disk full")).Once()

	svc := NewEscalationService(repo, nil, nil, clock, time.Hour, nil)
	_, err := svc.Open(context.Background(), OpenEscalationCommand{UserID: "u-1", ThreadID: "t-1", Query: "refund"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "disk full")
}

func TestEscalationExpireJoinsSaveFailures(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(escalationNow).Once()

	fresh := pendingEscalation("fresh", 10*time.Minute)
	stale := pendingEscalation("stale", 3*time.Hour)
	broken := pendingEscalation("broken", 5*time.Hour)
	done := pendingEscalation("done", 9*time.Hour)
	done.Status = domain.EscalationApproved

	repo.EXPECT().List(mockAnyContext()).Return([]domain.Escalation{fresh, stale, broken, done}, nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(e domain.Escalation) bool {
		return e.ID == "stale" && e.Status == domain.EscalationExpired && e.ResolvedAt.Equal(escalationNow)
	})).Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(e domain.Escalation) bool {
		return e.ID == "broken"
	})).Return(errors.New("locked")).Once()

	svc := NewEscalationService(repo, nil, nil, clock, time.Hour, nil)
	expired, err := svc.Expire(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, expired)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "broken")
}

func TestEscalationResolveByIDAlreadyResolved(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	resolved := pendingEscalation("esc-9", time.Minute)
	resolved.Status = domain.EscalationRejected
	repo.EXPECT().GetByID(mockAnyContext(), domain.EscalationID("esc-9")).Return(resolved, nil).Once()

	svc := NewEscalationService(repo, nil, nil, mocks.NewMockClock(t), time.Hour, nil)
	_, err := svc.ResolveByID(context.Background(), ResolveEscalationByIDCommand{ID: "esc-9", Approved: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEscalationNotFound)
	assert.Contains(t, err.Error(), "already rejected")
}

func TestEscalationResolveWritesDecisionToThread(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	sessions := mocks.NewMockSessionRepository(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(escalationNow)

	pending := pendingEscalation("esc-1", 10*time.Minute)
	repo.EXPECT().GetByID(mockAnyContext(), domain.EscalationID("esc-1")).Return(pending, nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(e domain.Escalation) bool {
		return e.Status == domain.EscalationRejected
	})).Return(nil).Once()

	earlier := domain.Message{Role: domain.RoleUser, Content: "How do I reset my password?", Timestamp: escalationNow.Add(-time.Hour)}
	sessions.EXPECT().Get(mockAnyContext(), "u-1", "t-1").
		Return(domain.Transcript{UserID: "u-1", ThreadID: "t-1", Messages: []domain.Message{earlier}}, nil).Once()

	var saved domain.Transcript
	sessions.EXPECT().Save(mockAnyContext(), mock.AnythingOfType("domain.Transcript")).
		Run(func(_ context.Context, transcript domain.Transcript) { saved = transcript }).
		Return(nil).Once()

	svc := NewEscalationService(repo, nil, sessions, clock, time.Hour, nil)
	resolution, err := svc.ResolveByID(context.Background(), ResolveEscalationByIDCommand{ID: "esc-1", Feedback: "Contact billing."})
	require.NoError(t, err)

	require.NotNil(t, saved.ReviewDecision)
	assert.False(t, *saved.ReviewDecision)
	assert.Equal(t, escalationNow, saved.UpdatedAt)
	require.Len(t, saved.Messages, 3)
	assert.Equal(t, earlier, saved.Messages[0])
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "I want a refund", Timestamp: pending.CreatedAt}, saved.Messages[1])
	assert.Equal(t, domain.Message{Role: domain.RoleAssistant, Content: resolution.Message, Timestamp: escalationNow}, saved.Messages[2])
}

func TestEscalationResolveRollsBackWhenThreadSaveFails(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	sessions := mocks.NewMockSessionRepository(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(escalationNow)

	pending := pendingEscalation("esc-2", time.Minute)
	repo.EXPECT().GetByID(mockAnyContext(), domain.EscalationID("esc-2")).Return(pending, nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(e domain.Escalation) bool {
		return e.Status == domain.EscalationApproved
	})).Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), pending).Return(nil).Once()

	sessions.EXPECT().Get(mockAnyContext(), "u-1", "t-1").Return(domain.Transcript{}, domain.ErrSessionNotFound).Once()
	sessions.EXPECT().Save(mockAnyContext(), mock.AnythingOfType("domain.Transcript")).Return(errors.New("disk full")).Once()

	svc := NewEscalationService(repo, nil, sessions, clock, time.Hour, nil)
	_, err := svc.ResolveByID(context.Background(), ResolveEscalationByIDCommand{ID: "esc-2", Approved: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "disk full")
}

func TestEscalationListFiltersByStatusAndUser(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEscalationRepository(t)
	a := pendingEscalation("a", time.Minute)
	b := pendingEscalation("b", time.Minute)
	b.UserID = "u-2"
	c := pendingEscalation("c", time.Minute)
	c.Status = domain.EscalationExpired
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Escalation{a, b, c}, nil)

	svc := NewEscalationService(repo, nil, nil, mocks.NewMockClock(t), time.Hour, nil)

	tests := []struct {
		name   string
		filter EscalationFilter
		want   []domain.EscalationID
	}{
		{name: "all", filter: EscalationFilter{}, want: []domain.EscalationID{"a", "b", "c"}},
		{name: "pending", filter: EscalationFilter{Status: domain.EscalationPending}, want: []domain.EscalationID{"a", "b"}},
		{name: "pending for user", filter: EscalationFilter{Status: domain.EscalationPending, UserID: "u-2"}, want: []domain.EscalationID{"b"}},
		{name: "expired", filter: EscalationFilter{Status: domain.EscalationExpired}, want: []domain.EscalationID{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]domain.EscalationID, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
