package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/repos"
	"github.com/mentora-app/mentora-backend/internal/types"
)

const (
	insightAgentType     = "personal_insights"
	regenerationInterval = 24 * time.Hour
)

// MutationResult is the caller-facing outcome of save/dismiss/react
// operations. Not-found and validation problems come back as
// {Success:false, Error} instead of a thrown error.
type MutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type RegenerationStatus struct {
	ShouldRegenerate bool       `json:"should_regenerate"`
	LastGeneratedAt  *time.Time `json:"last_generated_at,omitempty"`
	ActiveCount      int        `json:"active_count"`
}

type InsightService interface {
	// Generate runs the full aggregation->prompt->generation->persist
	// pipeline. Any failure is logged and degrades to an empty slice;
	// callers cannot distinguish "nothing to report" from a failed cycle.
	Generate(ctx context.Context, userID uuid.UUID) []*types.PersonalInsight
	FetchActive(ctx context.Context, userID uuid.UUID) ([]*types.PersonalInsight, error)
	SaveToContext(ctx context.Context, insightID uuid.UUID, userID uuid.UUID) MutationResult
	Dismiss(ctx context.Context, insightID uuid.UUID, userID uuid.UUID) MutationResult
	React(ctx context.Context, insightID uuid.UUID, reaction string, userID uuid.UUID) MutationResult
	ShouldRegenerate(ctx context.Context, userID uuid.UUID) (RegenerationStatus, error)
}

type insightService struct {
	log          *logger.Logger
	activity     ActivityService
	ai           AIClient
	insights     repos.PersonalInsightRepo
	contextItems repos.UserContextItemRepo
	collections  repos.UserCollectionRepo
	agentPrompts repos.AgentPromptRepo
	profiles     PreferenceProfileService
	embed        EmbedIndexer
}

func NewInsightService(
	log *logger.Logger,
	activity ActivityService,
	ai AIClient,
	insights repos.PersonalInsightRepo,
	contextItems repos.UserContextItemRepo,
	collections repos.UserCollectionRepo,
	agentPrompts repos.AgentPromptRepo,
	profiles PreferenceProfileService,
	embed EmbedIndexer,
) InsightService {
	return &insightService{
		log:          log.With("service", "InsightService"),
		activity:     activity,
		ai:           ai,
		insights:     insights,
		contextItems: contextItems,
		collections:  collections,
		agentPrompts: agentPrompts,
		profiles:     profiles,
		embed:        embed,
	}
}

// generatedInsight is the shape the generator is instructed to emit. Fields
// beyond a successful parse are not strictly enforced.
type generatedInsight struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	FullContent string `json:"full_content"`
	Category    string `json:"category"`
	Confidence  string `json:"confidence"`
}

func (s *insightService) Generate(ctx context.Context, userID uuid.UUID) []*types.PersonalInsight {
	inserted, err := s.generate(ctx, userID)
	if err != nil {
		// Failed cycles degrade to "nothing new"; the previous active batch
		// stays untouched because expiry only happens after a clean parse.
		s.log.Error("Insight generation failed", "user_id", userID, "error", err)
		return []*types.PersonalInsight{}
	}
	return inserted
}

func (s *insightService) generate(ctx context.Context, userID uuid.UUID) ([]*types.PersonalInsight, error) {
	snapshot, err := s.activity.Collect(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("collect activity: %w", err)
	}
	if snapshot == nil {
		s.log.Debug("Skipping generation, no activity", "user_id", userID)
		return []*types.PersonalInsight{}, nil
	}

	recent, err := s.insights.ListReactedRecent(ctx, nil, userID, 50)
	if err != nil {
		return nil, fmt.Errorf("load reaction history: %w", err)
	}
	feedback := summarizeReactions(recent)
	prompt := buildInsightPrompt(snapshot, feedback)

	system := ""
	model := DefaultInsightModel
	agentCfg, err := s.agentPrompts.GetByAgentType(ctx, nil, insightAgentType)
	if err != nil {
		return nil, fmt.Errorf("load agent config: %w", err)
	}
	if agentCfg != nil {
		system = agentCfg.SystemInstruction
		if strings.TrimSpace(agentCfg.Model) != "" {
			model = agentCfg.Model
		}
	}

	raw, err := s.ai.GenerateText(ctx, model, system, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation call: %w", err)
	}

	parsed, err := parseInsightArray(raw)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return []*types.PersonalInsight{}, nil
	}

	sourceSummary, err := json.Marshal(snapshot.Counts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batch := make([]*types.PersonalInsight, 0, len(parsed))
	for _, g := range parsed {
		batch = append(batch, &types.PersonalInsight{
			UserID:        userID,
			Title:         g.Title,
			Summary:       g.Summary,
			FullContent:   g.FullContent,
			Category:      g.Category,
			Confidence:    g.Confidence,
			SourceSummary: datatypes.JSON(sourceSummary),
			Status:        types.InsightStatusActive,
			GeneratedAt:   now,
		})
	}

	// Expire-then-insert only after a successful parse, so a failed cycle
	// never destroys the previous active batch.
	if err := s.insights.ExpireActiveByUser(ctx, nil, userID); err != nil {
		return nil, fmt.Errorf("expire previous batch: %w", err)
	}
	inserted, err := s.insights.CreateBatch(ctx, nil, batch)
	if err != nil {
		return nil, fmt.Errorf("insert new batch: %w", err)
	}
	s.log.Info("Generated insight batch", "user_id", userID, "count", len(inserted))
	return inserted, nil
}

// parseInsightArray trims the completion and strips a surrounding triple
// backtick fence (optionally tagged json) before parsing.
func parseInsightArray(raw string) ([]generatedInsight, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var parsed []generatedInsight
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse generator output: %w", err)
	}
	return parsed, nil
}

func (s *insightService) FetchActive(ctx context.Context, userID uuid.UUID) ([]*types.PersonalInsight, error) {
	return s.insights.ListActiveByUser(ctx, nil, userID)
}

func (s *insightService) SaveToContext(ctx context.Context, insightID uuid.UUID, userID uuid.UUID) MutationResult {
	insight, err := s.insights.GetByIDForUser(ctx, nil, insightID, userID)
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	if insight == nil {
		return MutationResult{Success: false, Error: "insight not found"}
	}

	// A missing personal-context collection is fine: the item is saved
	// unfiled.
	var collectionID *uuid.UUID
	collection, err := s.collections.GetPersonalContext(ctx, nil, userID)
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	if collection != nil {
		collectionID = &collection.ID
	}

	content, err := json.Marshal(map[string]any{
		"title":        insight.Title,
		"summary":      insight.Summary,
		"full_content": insight.FullContent,
		"category":     insight.Category,
		"generated_at": insight.GeneratedAt,
	})
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}

	items, err := s.contextItems.Create(ctx, nil, []*types.UserContextItem{{
		UserID:       userID,
		CollectionID: collectionID,
		Title:        insight.Title,
		Type:         types.ContextItemTypeAIInsight,
		Content:      datatypes.JSON(content),
	}})
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}

	if err := s.insights.MarkSaved(ctx, nil, insightID, userID, time.Now().UTC()); err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}

	if s.embed != nil && len(items) == 1 {
		body := insight.Title + "\n" + insight.FullContent
		if err := s.embed.CreateItemEmbedding(ctx, userID, items[0].ID, types.ContextItemTypeAIInsight, body, collectionID, map[string]any{
			"category": insight.Category,
		}); err != nil {
			s.log.Warn("Saved insight embedding failed", "user_id", userID, "item_id", items[0].ID, "error", err)
		}
	}
	return MutationResult{Success: true}
}

func (s *insightService) Dismiss(ctx context.Context, insightID uuid.UUID, userID uuid.UUID) MutationResult {
	insight, err := s.insights.GetByIDForUser(ctx, nil, insightID, userID)
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	if insight == nil {
		return MutationResult{Success: false, Error: "insight not found"}
	}

	if err := s.insights.MarkDismissed(ctx, nil, insightID, userID, time.Now().UTC()); err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	s.profiles.Schedule(userID)
	return MutationResult{Success: true}
}

func (s *insightService) React(ctx context.Context, insightID uuid.UUID, reaction string, userID uuid.UUID) MutationResult {
	if reaction != types.InsightReactionHelpful && reaction != types.InsightReactionNotHelpful {
		return MutationResult{Success: false, Error: "invalid reaction"}
	}

	insight, err := s.insights.GetByIDForUser(ctx, nil, insightID, userID)
	if err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	if insight == nil {
		return MutationResult{Success: false, Error: "insight not found"}
	}
	if insight.Status == types.InsightStatusExpired {
		return MutationResult{Success: false, Error: "insight expired"}
	}

	if err := s.insights.SetReaction(ctx, nil, insightID, userID, reaction); err != nil {
		return MutationResult{Success: false, Error: err.Error()}
	}
	s.profiles.Schedule(userID)
	return MutationResult{Success: true}
}

func (s *insightService) ShouldRegenerate(ctx context.Context, userID uuid.UUID) (RegenerationStatus, error) {
	active, err := s.insights.ListActiveByUser(ctx, nil, userID)
	if err != nil {
		return RegenerationStatus{}, err
	}
	if len(active) == 0 {
		return RegenerationStatus{ShouldRegenerate: true}, nil
	}

	newest := active[0].GeneratedAt
	return RegenerationStatus{
		ShouldRegenerate: time.Since(newest) > regenerationInterval,
		LastGeneratedAt:  &newest,
		ActiveCount:      len(active),
	}, nil
}
