package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mentora-app/mentora-backend/internal/types"
)

func TestCollect_NoActivityReturnsNil(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, snapshot)
}

func TestCollect_NotesAloneProduceASnapshot(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	require.Equal(t, 1, snapshot.Counts.Notes)
	require.Equal(t, 0, snapshot.Counts.Conversations)
}

func TestCollect_CourseCompletionWatchTimeAndCredits(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	course := &types.Course{ID: uuid.New(), Title: "Graph Theory"}
	require.NoError(t, f.db.Create(course).Error)

	progress := []*types.UserProgress{
		{ID: uuid.New(), UserID: userID, CourseID: course.ID, LessonID: uuid.New(), Completed: true, WatchSeconds: 3600},
		{ID: uuid.New(), UserID: userID, CourseID: course.ID, LessonID: uuid.New(), Completed: false, WatchSeconds: 1800},
	}
	for _, p := range progress {
		require.NoError(t, f.db.Create(p).Error)
	}
	require.NoError(t, f.db.Create(&types.CreditLedgerEntry{ID: uuid.New(), UserID: userID, Delta: 100, Reason: "purchase"}).Error)
	require.NoError(t, f.db.Create(&types.CreditLedgerEntry{ID: uuid.New(), UserID: userID, Delta: -30, Reason: "generation"}).Error)

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	require.Len(t, snapshot.Courses, 1)
	got := snapshot.Courses[0]
	require.Equal(t, "Graph Theory", got.Title)
	require.Equal(t, 1, got.CompletedLessons)
	require.Equal(t, 2, got.TotalLessons)
	require.Equal(t, 50, got.CompletionPct)

	require.Equal(t, 1, snapshot.WatchHours)
	require.Equal(t, 30, snapshot.WatchMinutes)
	require.Equal(t, 70, snapshot.TotalCredits)
}

func TestCollect_CertificateOnlyCourseAppearsWithoutLessons(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	course := &types.Course{ID: uuid.New(), Title: "Linear Algebra"}
	require.NoError(t, f.db.Create(course).Error)
	require.NoError(t, f.db.Create(&types.Certificate{
		ID: uuid.New(), UserID: userID, CourseID: course.ID, IssuedAt: time.Now().UTC(),
	}).Error)

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	require.Len(t, snapshot.Courses, 1)
	require.Equal(t, "Linear Algebra", snapshot.Courses[0].Title)
	require.Equal(t, 0, snapshot.Courses[0].TotalLessons)
	require.Equal(t, 1, snapshot.Counts.Certificates)
}

func TestCollect_ConversationTailBoundedToNewestMessages(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	conv := &types.Conversation{ID: uuid.New(), UserID: userID, Title: "Study help"}
	require.NoError(t, f.db.Create(conv).Error)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 1; i <= 7; i++ {
		msg := &types.ConversationMessage{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Role:           "user",
			Content:        fmt.Sprintf("message-%d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(msg).Error)
	}

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Conversations, 1)

	tail := snapshot.Conversations[0].Messages
	require.Len(t, tail, 5)
	require.Equal(t, "message-3", tail[0].Content)
	require.Equal(t, "message-7", tail[4].Content)
}

func TestCollect_AIUsageSummarizedPerAgent(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	base := time.Now().UTC().Add(-2 * time.Hour)
	logs := []struct {
		agent string
		at    time.Time
	}{
		{"tutor", base},
		{"tutor", base.Add(30 * time.Minute)},
		{"planner", base.Add(time.Hour)},
	}
	for _, l := range logs {
		require.NoError(t, f.db.Create(&types.AILog{
			ID: uuid.New(), UserID: userID, AgentType: l.agent, CreatedAt: l.at,
		}).Error)
	}

	snapshot, err := f.activity.Collect(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	require.Equal(t, 3, snapshot.AIUsage.Total)
	require.Equal(t, 2, snapshot.AIUsage.PerAgent["tutor"])
	require.Equal(t, 1, snapshot.AIUsage.PerAgent["planner"])
	require.Equal(t, []string{"planner", "tutor"}, snapshot.AIUsage.AgentOrder)
	require.False(t, snapshot.AIUsage.ActiveFrom.After(snapshot.AIUsage.ActiveTo))
}
