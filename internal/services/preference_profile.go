package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mentora-app/mentora-backend/internal/clients/redis"
	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/repos"
	"github.com/mentora-app/mentora-backend/internal/types"
)

const (
	// ProfileTitle keys the singleton preference-profile context item.
	ProfileTitle = "Reaction Preference Profile"

	preferredScoreFloor = 0.6
	avoidedScoreCeiling = 0.4
	maxRecentReactions  = 10
	resyncQueueSize     = 64
	resyncLockTTL       = 30 * time.Second
)

// PreferenceProfile is the structured document synthesized from a user's
// full reaction history. It is a materialized view: recomputed from scratch
// on every reaction or dismissal, never edited in place.
type PreferenceProfile struct {
	CategoryPreferences map[string]CategoryPreference `json:"categoryPreferences"`
	LikedTopics         []string                      `json:"likedTopics"`
	DislikedTopics      []string                      `json:"dislikedTopics"`
	SaveRate            float64                       `json:"saveRate"`
	DismissRate         float64                       `json:"dismissRate"`
	EngagementTier      string                        `json:"engagementTier"`
	RecentReactions     []string                      `json:"recentReactions"`
	LastUpdated         time.Time                     `json:"lastUpdated"`
}

type CategoryPreference struct {
	Helpful    int     `json:"helpful"`
	NotHelpful int     `json:"not_helpful"`
	Dismissed  int     `json:"dismissed"`
	Score      float64 `json:"score"`
}

type PreferenceProfileService interface {
	// Schedule submits a background resync for the user. The caller never
	// waits: failures go to the dead-letter log, not back to the caller.
	Schedule(userID uuid.UUID)
	// Resync recomputes and upserts the profile from the full insight
	// history. A user with no actioned insights is a no-op.
	Resync(ctx context.Context, userID uuid.UUID) error
	Stop()
}

type preferenceProfileService struct {
	log          *logger.Logger
	insights     repos.PersonalInsightRepo
	contextItems repos.UserContextItemRepo
	embed        EmbedIndexer
	locker       redis.Locker

	mu     sync.Mutex
	closed bool
	queue  chan uuid.UUID
	wg     sync.WaitGroup
}

// NewPreferenceProfileService starts the resync worker. locker may be nil;
// without it overlapping resyncs for the same user are allowed (full
// recompute keeps the result correct, last writer wins).
func NewPreferenceProfileService(
	log *logger.Logger,
	insights repos.PersonalInsightRepo,
	contextItems repos.UserContextItemRepo,
	embed EmbedIndexer,
	locker redis.Locker,
) PreferenceProfileService {
	s := &preferenceProfileService{
		log:          log.With("service", "PreferenceProfileService"),
		insights:     insights,
		contextItems: contextItems,
		embed:        embed,
		locker:       locker,
		queue:        make(chan uuid.UUID, resyncQueueSize),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

func (s *preferenceProfileService) Schedule(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn("Profile resync scheduled after shutdown, task dropped", "user_id", userID)
		return
	}
	select {
	case s.queue <- userID:
	default:
		// Dead-letter: the queue is full, the task is dropped and recorded.
		s.log.Error("Profile resync queue full, task dropped", "user_id", userID)
	}
}

func (s *preferenceProfileService) Stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *preferenceProfileService) worker() {
	defer s.wg.Done()
	for userID := range s.queue {
		s.runOne(userID)
	}
}

func (s *preferenceProfileService) runOne(userID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if s.locker != nil {
		acquired, err := s.locker.TryAcquire(ctx, "profile-resync:"+userID.String(), resyncLockTTL)
		if err != nil {
			s.log.Warn("Resync lock unavailable, proceeding without it", "user_id", userID, "error", err)
		} else if !acquired {
			// A full recompute is already in flight; this task adds nothing.
			s.log.Debug("Resync already in flight, skipping", "user_id", userID)
			return
		} else {
			defer func() {
				releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer releaseCancel()
				_ = s.locker.Release(releaseCtx, "profile-resync:"+userID.String())
			}()
		}
	}

	if err := s.Resync(ctx, userID); err != nil {
		s.log.Error("Profile resync failed", "user_id", userID, "error", err)
	}
}

func (s *preferenceProfileService) Resync(ctx context.Context, userID uuid.UUID) error {
	history, err := s.insights.ListActioned(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("load insight history: %w", err)
	}
	if len(history) == 0 {
		// First-run no-op: any existing profile stays untouched.
		return nil
	}

	profile := synthesizeProfile(history)
	body := renderProfileText(profile)

	content, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	existing, err := s.contextItems.GetByUserTitleType(ctx, nil, userID, ProfileTitle, types.ContextItemTypePreferenceProfile)
	if err != nil {
		return fmt.Errorf("probe existing profile: %w", err)
	}

	if existing != nil {
		if err := s.contextItems.UpdateContent(ctx, nil, existing.ID, datatypes.JSON(content)); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if err := s.embed.UpdateItemEmbedding(ctx, userID, existing.ID, types.ContextItemTypePreferenceProfile, body, existing.CollectionID, nil); err != nil {
			return fmt.Errorf("re-embed profile: %w", err)
		}
		return nil
	}

	items, err := s.contextItems.Create(ctx, nil, []*types.UserContextItem{{
		UserID:  userID,
		Title:   ProfileTitle,
		Type:    types.ContextItemTypePreferenceProfile,
		Content: datatypes.JSON(content),
	}})
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	if err := s.embed.CreateItemEmbedding(ctx, userID, items[0].ID, types.ContextItemTypePreferenceProfile, body, nil, nil); err != nil {
		return fmt.Errorf("embed profile: %w", err)
	}
	return nil
}

// synthesizeProfile reduces the actioned history (newest first) into the
// profile document.
func synthesizeProfile(history []*types.PersonalInsight) *PreferenceProfile {
	summary := summarizeReactions(history)

	likedTitles := make([]string, 0, len(summary.Helpful))
	for _, insight := range summary.Helpful {
		likedTitles = append(likedTitles, insight.Title)
	}
	dislikedTitles := make([]string, 0, len(summary.NotHelpful)+len(summary.DismissedOnly))
	for _, insight := range summary.NotHelpful {
		dislikedTitles = append(dislikedTitles, insight.Title)
	}
	for _, insight := range summary.DismissedOnly {
		dislikedTitles = append(dislikedTitles, insight.Title)
	}

	saved, dismissed, savedUnreacted := 0, 0, 0
	for _, insight := range history {
		switch insight.Status {
		case types.InsightStatusSaved:
			saved++
			if insight.Reaction == nil {
				savedUnreacted++
			}
		case types.InsightStatusDismissed:
			dismissed++
		}
	}

	// A save without an explicit reaction is still an action; counting it in
	// the denominator keeps the rates inside [0, 1].
	actioned := summary.actioned() + savedUnreacted
	profile := &PreferenceProfile{
		CategoryPreferences: map[string]CategoryPreference{},
		LikedTopics:         extractTopics(likedTitles, maxTopics),
		DislikedTopics:      extractTopics(dislikedTitles, maxTopics),
		EngagementTier:      engagementTier(actioned),
		LastUpdated:         time.Now().UTC(),
	}
	if actioned > 0 {
		profile.SaveRate = float64(saved) / float64(actioned)
		profile.DismissRate = float64(dismissed) / float64(actioned)
	}
	for cat, cs := range summary.Categories {
		profile.CategoryPreferences[cat] = CategoryPreference{
			Helpful:    cs.Helpful,
			NotHelpful: cs.NotHelpful,
			Dismissed:  cs.Dismissed,
			Score:      cs.Score,
		}
	}
	for i, insight := range history {
		if i >= maxRecentReactions {
			break
		}
		profile.RecentReactions = append(profile.RecentReactions, reactionLine(insight))
	}
	return profile
}

func reactionLine(insight *types.PersonalInsight) string {
	action := insight.Status
	if insight.Reaction != nil {
		action = *insight.Reaction
	}
	return fmt.Sprintf("%s (%s): %s", insight.Title, insight.Category, action)
}

// renderProfileText produces the embedding-ready natural-language block:
// preferred categories, avoided categories, liked topics, disliked topics,
// one engagement sentence and a fixed closing preference statement.
func renderProfileText(profile *PreferenceProfile) string {
	var b strings.Builder

	var preferred, avoided []string
	for _, cat := range types.InsightCategories {
		pref, ok := profile.CategoryPreferences[cat]
		if !ok {
			continue
		}
		total := pref.Helpful + pref.NotHelpful + pref.Dismissed
		if total == 0 {
			continue
		}
		if pref.Score > preferredScoreFloor {
			preferred = append(preferred, cat)
		} else if pref.Score < avoidedScoreCeiling {
			avoided = append(avoided, cat)
		}
	}

	if len(preferred) > 0 {
		fmt.Fprintf(&b, "This user finds %s insights valuable.\n", strings.Join(preferred, ", "))
	}
	if len(avoided) > 0 {
		fmt.Fprintf(&b, "This user tends to reject %s insights.\n", strings.Join(avoided, ", "))
	}
	if len(profile.LikedTopics) > 0 {
		fmt.Fprintf(&b, "Topics they respond well to: %s.\n", strings.Join(profile.LikedTopics, ", "))
	}
	if len(profile.DislikedTopics) > 0 {
		fmt.Fprintf(&b, "Topics they respond poorly to: %s.\n", strings.Join(profile.DislikedTopics, ", "))
	}
	fmt.Fprintf(&b, "Overall insight engagement is %s, with a save rate of %.0f%% and a dismiss rate of %.0f%%.\n",
		profile.EngagementTier, profile.SaveRate*100, profile.DismissRate*100)
	b.WriteString("Future insights should follow these preferences when choosing categories, topics and tone.\n")
	return b.String()
}
