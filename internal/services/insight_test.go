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

func generatedBatchJSON(n int) string {
	out := "["
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ","
		}
		out += fmt.Sprintf(`{
			"title": "Insight %d",
			"summary": "Summary %d",
			"full_content": "Full content %d.",
			"category": "learning_pattern",
			"confidence": "medium"
		}`, i, i, i)
	}
	return out + "]"
}

func TestParseInsightArray_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare", generatedBatchJSON(2)},
		{"fenced", "```\n" + generatedBatchJSON(2) + "\n```"},
		{"fenced with tag", "```json\n" + generatedBatchJSON(2) + "\n```"},
		{"padded", "  \n```json\n" + generatedBatchJSON(2) + "\n```\n  "},
	}
	for _, tc := range tests {
		parsed, err := parseInsightArray(tc.raw)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(parsed) != 2 {
			t.Fatalf("%s: len = %d, want 2", tc.name, len(parsed))
		}
		if parsed[0].Title != "Insight 1" || parsed[0].Category != "learning_pattern" {
			t.Fatalf("%s: unexpected first element %+v", tc.name, parsed[0])
		}
	}
}

func TestParseInsightArray_RejectsNonJSON(t *testing.T) {
	if _, err := parseInsightArray("I cannot produce insights right now."); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGenerate_PersistsBatchAndExpiresPrevious(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)

	previous := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Old insight"})

	f.ai.response = "```json\n" + generatedBatchJSON(5) + "\n```"
	inserted := f.svc.Generate(context.Background(), userID)
	require.Len(t, inserted, 5)

	active, err := f.svc.FetchActive(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, active, 5)
	for _, insight := range active {
		require.Equal(t, types.InsightStatusActive, insight.Status)
		require.NotEqual(t, previous.ID, insight.ID)
		require.NotEmpty(t, insight.SourceSummary)
	}

	var reloaded types.PersonalInsight
	require.NoError(t, f.db.First(&reloaded, "id = ?", previous.ID).Error)
	require.Equal(t, types.InsightStatusExpired, reloaded.Status)
}

func TestGenerate_FailedCallLeavesPreviousBatchActive(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)
	f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Survivor"})

	f.ai.err = fmt.Errorf("upstream 500")
	result := f.svc.Generate(context.Background(), userID)
	require.Empty(t, result)

	active, err := f.svc.FetchActive(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Survivor", active[0].Title)
}

func TestGenerate_MalformedOutputLeavesPreviousBatchActive(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)
	f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Survivor"})

	f.ai.response = "Here are some thoughts about your learning."
	result := f.svc.Generate(context.Background(), userID)
	require.Empty(t, result)

	active, err := f.svc.FetchActive(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestGenerate_NoActivitySkipsGenerationCall(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	result := f.svc.Generate(context.Background(), userID)
	require.Empty(t, result)
	require.Equal(t, 0, f.ai.callCount())
}

func TestGenerate_UsesConfiguredAgentPrompt(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)

	require.NoError(t, f.db.Create(&types.AgentPrompt{
		ID:                uuid.New(),
		AgentType:         "personal_insights",
		SystemInstruction: "Be concise.",
		Model:             "gpt-4.1",
	}).Error)

	f.ai.response = generatedBatchJSON(5)
	f.svc.Generate(context.Background(), userID)

	require.Equal(t, "gpt-4.1", f.ai.lastModel)
	require.Equal(t, "Be concise.", f.ai.lastSystem)
}

func TestGenerate_DefaultsWithoutAgentPromptRow(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedNote(t, userID)

	f.ai.response = generatedBatchJSON(5)
	f.svc.Generate(context.Background(), userID)

	require.Equal(t, DefaultInsightModel, f.ai.lastModel)
	require.Equal(t, "", f.ai.lastSystem)
}

func TestSaveToContext_MarksSavedAndFilesIntoPersonalCollection(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	collection := &types.UserCollection{
		ID: uuid.New(), UserID: userID, Name: "Personal Context", IsPersonalContext: true,
	}
	require.NoError(t, f.db.Create(collection).Error)

	insight := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Keep going"})

	result := f.svc.SaveToContext(context.Background(), insight.ID, userID)
	require.True(t, result.Success, result.Error)

	var reloaded types.PersonalInsight
	require.NoError(t, f.db.First(&reloaded, "id = ?", insight.ID).Error)
	require.Equal(t, types.InsightStatusSaved, reloaded.Status)
	require.NotNil(t, reloaded.SavedAt)

	var item types.UserContextItem
	require.NoError(t, f.db.First(&item, "user_id = ? AND type = ?", userID, types.ContextItemTypeAIInsight).Error)
	require.Equal(t, "Keep going", item.Title)
	require.NotNil(t, item.CollectionID)
	require.Equal(t, collection.ID, *item.CollectionID)

	created, _ := f.embed.counts()
	require.Equal(t, 1, created)

	active, err := f.svc.FetchActive(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestSaveToContext_UnknownInsight(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	result := f.svc.SaveToContext(context.Background(), uuid.New(), userID)
	require.False(t, result.Success)
	require.Equal(t, "insight not found", result.Error)
}

func TestSaveToContext_SucceedsWhenEmbeddingFails(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	insight := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Resilient"})

	f.embed.err = fmt.Errorf("index unavailable")
	result := f.svc.SaveToContext(context.Background(), insight.ID, userID)
	require.True(t, result.Success, result.Error)
}

func TestDismiss_MarksDismissedAndResyncsProfile(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	insight := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Not for me"})

	result := f.svc.Dismiss(context.Background(), insight.ID, userID)
	require.True(t, result.Success, result.Error)

	var reloaded types.PersonalInsight
	require.NoError(t, f.db.First(&reloaded, "id = ?", insight.ID).Error)
	require.Equal(t, types.InsightStatusDismissed, reloaded.Status)
	require.NotNil(t, reloaded.DismissedAt)

	// Stopping the profile worker drains the queued resync.
	f.profiles.Stop()

	var item types.UserContextItem
	require.NoError(t, f.db.First(&item, "user_id = ? AND title = ?", userID, ProfileTitle).Error)
	require.Equal(t, types.ContextItemTypePreferenceProfile, item.Type)
}

func TestReact_RecordsReaction(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	insight := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "On point"})

	result := f.svc.React(context.Background(), insight.ID, types.InsightReactionHelpful, userID)
	require.True(t, result.Success, result.Error)

	var reloaded types.PersonalInsight
	require.NoError(t, f.db.First(&reloaded, "id = ?", insight.ID).Error)
	require.NotNil(t, reloaded.Reaction)
	require.Equal(t, types.InsightReactionHelpful, *reloaded.Reaction)
}

func TestReact_RejectsInvalidReaction(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	insight := f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Whatever"})

	result := f.svc.React(context.Background(), insight.ID, "meh", userID)
	require.False(t, result.Success)
	require.Equal(t, "invalid reaction", result.Error)
}

func TestReact_RejectsExpiredInsight(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	insight := f.seedInsight(t, &types.PersonalInsight{
		UserID: userID, Title: "Stale", Status: types.InsightStatusExpired,
	})

	result := f.svc.React(context.Background(), insight.ID, types.InsightReactionHelpful, userID)
	require.False(t, result.Success)
	require.Equal(t, "insight expired", result.Error)
}

func TestShouldRegenerate_TrueWithoutActiveBatch(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)

	status, err := f.svc.ShouldRegenerate(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, status.ShouldRegenerate)
	require.Nil(t, status.LastGeneratedAt)
	require.Equal(t, 0, status.ActiveCount)
}

func TestShouldRegenerate_FalseForFreshBatch(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedInsight(t, &types.PersonalInsight{UserID: userID, Title: "Fresh"})

	status, err := f.svc.ShouldRegenerate(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, status.ShouldRegenerate)
	require.NotNil(t, status.LastGeneratedAt)
	require.Equal(t, 1, status.ActiveCount)
}

func TestShouldRegenerate_TrueForStaleBatch(t *testing.T) {
	f := newInsightFixture(t)
	userID := seedUser(t, f.db)
	f.seedInsight(t, &types.PersonalInsight{
		UserID:      userID,
		Title:       "Stale",
		GeneratedAt: time.Now().UTC().Add(-25 * time.Hour),
	})

	status, err := f.svc.ShouldRegenerate(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, status.ShouldRegenerate)
	require.Equal(t, 1, status.ActiveCount)
}
