package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

func openInsightTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.PersonalInsight{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newInsightRepoFixture(t *testing.T) (PersonalInsightRepo, *gorm.DB, uuid.UUID) {
	t.Helper()
	db := openInsightTestDB(t)
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	user := &types.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewPersonalInsightRepo(db, log), db, user.ID
}

func mustInsert(t *testing.T, db *gorm.DB, insight *types.PersonalInsight) *types.PersonalInsight {
	t.Helper()
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	if insight.Status == "" {
		insight.Status = types.InsightStatusActive
	}
	if insight.Category == "" {
		insight.Category = types.InsightCategoryStrength
	}
	if insight.Confidence == "" {
		insight.Confidence = types.InsightConfidenceLow
	}
	if insight.GeneratedAt.IsZero() {
		insight.GeneratedAt = time.Now().UTC()
	}
	if err := db.Create(insight).Error; err != nil {
		t.Fatalf("insert insight: %v", err)
	}
	return insight
}

func TestCreateBatch_AssignsIDs(t *testing.T) {
	repo, _, userID := newInsightRepoFixture(t)

	batch := []*types.PersonalInsight{
		{UserID: userID, Title: "A", Category: "strength", Confidence: "low", Status: types.InsightStatusActive, GeneratedAt: time.Now().UTC()},
		{UserID: userID, Title: "B", Category: "strength", Confidence: "low", Status: types.InsightStatusActive, GeneratedAt: time.Now().UTC()},
	}
	inserted, err := repo.CreateBatch(context.Background(), nil, batch)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for _, insight := range inserted {
		if insight.ID == uuid.Nil {
			t.Fatalf("expected assigned id for %q", insight.Title)
		}
	}
}

func TestExpireActiveByUser_OnlyTouchesActiveRows(t *testing.T) {
	repo, db, userID := newInsightRepoFixture(t)

	active := mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Active"})
	saved := mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Saved", Status: types.InsightStatusSaved})

	if err := repo.ExpireActiveByUser(context.Background(), nil, userID); err != nil {
		t.Fatalf("ExpireActiveByUser: %v", err)
	}

	var reloaded types.PersonalInsight
	if err := db.First(&reloaded, "id = ?", active.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != types.InsightStatusExpired {
		t.Fatalf("active row status = %q, want expired", reloaded.Status)
	}
	reloaded = types.PersonalInsight{}
	if err := db.First(&reloaded, "id = ?", saved.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != types.InsightStatusSaved {
		t.Fatalf("saved row status = %q, want saved", reloaded.Status)
	}
}

func TestSetReaction_SkipsExpiredRows(t *testing.T) {
	repo, db, userID := newInsightRepoFixture(t)
	expired := mustInsert(t, db, &types.PersonalInsight{
		UserID: userID, Title: "Gone", Status: types.InsightStatusExpired,
	})

	if err := repo.SetReaction(context.Background(), nil, expired.ID, userID, types.InsightReactionHelpful); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}

	var reloaded types.PersonalInsight
	if err := db.First(&reloaded, "id = ?", expired.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Reaction != nil {
		t.Fatalf("expected reaction untouched on expired row, got %q", *reloaded.Reaction)
	}
}

func TestGetByIDForUser_ScopedToOwner(t *testing.T) {
	repo, db, userID := newInsightRepoFixture(t)
	insight := mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Mine"})

	other := &types.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	got, err := repo.GetByIDForUser(context.Background(), nil, insight.ID, other.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for foreign user, got %+v", got)
	}

	got, err = repo.GetByIDForUser(context.Background(), nil, insight.ID, userID)
	if err != nil || got == nil {
		t.Fatalf("expected owner lookup to succeed, got %v / %v", got, err)
	}
}

func TestListReactedRecent_FiltersAndLimits(t *testing.T) {
	repo, db, userID := newInsightRepoFixture(t)
	helpful := types.InsightReactionHelpful

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		mustInsert(t, db, &types.PersonalInsight{
			UserID:    userID,
			Title:     fmt.Sprintf("Reacted %d", i),
			Reaction:  &helpful,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Plain active", CreatedAt: base.Add(30 * time.Minute)})
	mustInsert(t, db, &types.PersonalInsight{
		UserID: userID, Title: "Dismissed", Status: types.InsightStatusDismissed, CreatedAt: base.Add(40 * time.Minute),
	})

	results, err := repo.ListReactedRecent(context.Background(), nil, userID, 2)
	if err != nil {
		t.Fatalf("ListReactedRecent: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].Title != "Dismissed" {
		t.Fatalf("newest first expected, got %q", results[0].Title)
	}
	for _, r := range results {
		if r.Title == "Plain active" {
			t.Fatalf("unreacted active row should be excluded")
		}
	}
}

func TestMarkSavedAndMarkDismissed_WriteStatusAndTimestamp(t *testing.T) {
	repo, db, userID := newInsightRepoFixture(t)
	toSave := mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Save me"})
	toDismiss := mustInsert(t, db, &types.PersonalInsight{UserID: userID, Title: "Dismiss me"})

	at := time.Now().UTC()
	if err := repo.MarkSaved(context.Background(), nil, toSave.ID, userID, at); err != nil {
		t.Fatalf("MarkSaved: %v", err)
	}
	if err := repo.MarkDismissed(context.Background(), nil, toDismiss.ID, userID, at); err != nil {
		t.Fatalf("MarkDismissed: %v", err)
	}

	var reloaded types.PersonalInsight
	if err := db.First(&reloaded, "id = ?", toSave.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != types.InsightStatusSaved || reloaded.SavedAt == nil {
		t.Fatalf("saved row = status %q savedAt %v", reloaded.Status, reloaded.SavedAt)
	}
	reloaded = types.PersonalInsight{}
	if err := db.First(&reloaded, "id = ?", toDismiss.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != types.InsightStatusDismissed || reloaded.DismissedAt == nil {
		t.Fatalf("dismissed row = status %q dismissedAt %v", reloaded.Status, reloaded.DismissedAt)
	}
}
