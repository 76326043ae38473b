package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/repos"
	"github.com/mentora-app/mentora-backend/internal/types"
)

func noopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// openTestDB opens a named in-memory sqlite database so each test gets an
// isolated schema while every connection in the pool sees the same data.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.Conversation{},
		&types.ConversationMessage{},
		&types.UserCollection{},
		&types.UserContextItem{},
		&types.Course{},
		&types.UserProgress{},
		&types.Certificate{},
		&types.AILog{},
		&types.Note{},
		&types.CreditLedgerEntry{},
		&types.AgentPrompt{},
		&types.PersonalInsight{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

type fakeAI struct {
	mu         sync.Mutex
	response   string
	err        error
	calls      int
	lastModel  string
	lastSystem string
	lastUser   string
}

func (f *fakeAI) GenerateText(_ context.Context, model string, system string, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastModel = model
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAI) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEmbed struct {
	mu      sync.Mutex
	created []uuid.UUID
	updated []uuid.UUID
	err     error
}

func (f *fakeEmbed) CreateItemEmbedding(_ context.Context, _ uuid.UUID, itemID uuid.UUID, _ string, _ string, _ *uuid.UUID, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, itemID)
	return nil
}

func (f *fakeEmbed) UpdateItemEmbedding(_ context.Context, _ uuid.UUID, itemID uuid.UUID, _ string, _ string, _ *uuid.UUID, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, itemID)
	return nil
}

func (f *fakeEmbed) counts() (created int, updated int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created), len(f.updated)
}

// insightFixture wires the full pipeline against an in-memory database with
// the generation and embedding clients faked out.
type insightFixture struct {
	db           *gorm.DB
	ai           *fakeAI
	embed        *fakeEmbed
	insights     repos.PersonalInsightRepo
	contextItems repos.UserContextItemRepo
	profiles     PreferenceProfileService
	activity     ActivityService
	svc          InsightService
}

func newInsightFixture(t *testing.T) *insightFixture {
	t.Helper()
	db := openTestDB(t)
	log := noopLogger()

	insights := repos.NewPersonalInsightRepo(db, log)
	contextItems := repos.NewUserContextItemRepo(db, log)
	collections := repos.NewUserCollectionRepo(db, log)
	agentPrompts := repos.NewAgentPromptRepo(db, log)

	activity := NewActivityService(
		log,
		repos.NewConversationRepo(db, log),
		repos.NewConversationMessageRepo(db, log),
		contextItems,
		repos.NewUserProgressRepo(db, log),
		repos.NewCertificateRepo(db, log),
		repos.NewAILogRepo(db, log),
		repos.NewNoteRepo(db, log),
		repos.NewCreditLedgerRepo(db, log),
		repos.NewCourseRepo(db, log),
	)

	ai := &fakeAI{}
	embed := &fakeEmbed{}
	profiles := NewPreferenceProfileService(log, insights, contextItems, embed, nil)
	t.Cleanup(profiles.Stop)

	svc := NewInsightService(log, activity, ai, insights, contextItems, collections, agentPrompts, profiles, embed)
	return &insightFixture{
		db:           db,
		ai:           ai,
		embed:        embed,
		insights:     insights,
		contextItems: contextItems,
		profiles:     profiles,
		activity:     activity,
		svc:          svc,
	}
}

// seedNote gives a user just enough recorded activity for generation to run.
func (f *insightFixture) seedNote(t *testing.T, userID uuid.UUID) {
	t.Helper()
	note := &types.Note{ID: uuid.New(), UserID: userID, Title: "Study plan", Content: "Revise graphs weekly."}
	if err := f.db.Create(note).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}
}

func (f *insightFixture) seedInsight(t *testing.T, insight *types.PersonalInsight) *types.PersonalInsight {
	t.Helper()
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	if insight.Status == "" {
		insight.Status = types.InsightStatusActive
	}
	if insight.Category == "" {
		insight.Category = types.InsightCategoryLearningPattern
	}
	if insight.Confidence == "" {
		insight.Confidence = types.InsightConfidenceMedium
	}
	if insight.GeneratedAt.IsZero() {
		insight.GeneratedAt = time.Now().UTC()
	}
	if err := f.db.Create(insight).Error; err != nil {
		t.Fatalf("seed insight: %v", err)
	}
	return insight
}

func strPtr(s string) *string {
	return &s
}
