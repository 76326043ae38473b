package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/repos"
	"github.com/mentora-app/mentora-backend/internal/types"
)

const (
	maxConversations = 50
	maxMessagesKept  = 5
	maxAILogs        = 200
	maxNotes         = 50
)

// ConversationActivity is one conversation with its bounded message tail
// (newest maxMessagesKept messages, oldest first).
type ConversationActivity struct {
	Conversation *types.Conversation
	Messages     []*types.ConversationMessage
}

type CourseActivity struct {
	CourseID         uuid.UUID
	Title            string
	CompletedLessons int
	TotalLessons     int
	CompletionPct    int
}

type AIUsage struct {
	Total      int
	PerAgent   map[string]int
	AgentOrder []string
	ActiveFrom time.Time
	ActiveTo   time.Time
}

// ActivitySnapshot is everything the prompt assembler needs about a user,
// reduced to compact derived quantities.
type ActivitySnapshot struct {
	Conversations []ConversationActivity
	ContextItems  []*types.UserContextItem
	Courses       []CourseActivity
	Certificates  []*types.Certificate
	Notes         []*types.Note
	AIUsage       AIUsage
	TotalCredits  int
	WatchHours    int
	WatchMinutes  int
	Counts        types.SourceCounts
}

type ActivityService interface {
	// Collect gathers a user's recent activity. It returns a nil snapshot
	// when the user has no recorded activity at all; notes alone are
	// enough to proceed.
	Collect(ctx context.Context, userID uuid.UUID) (*ActivitySnapshot, error)
}

type activityService struct {
	log           *logger.Logger
	conversations repos.ConversationRepo
	messages      repos.ConversationMessageRepo
	contextItems  repos.UserContextItemRepo
	progress      repos.UserProgressRepo
	certificates  repos.CertificateRepo
	aiLogs        repos.AILogRepo
	notes         repos.NoteRepo
	credits       repos.CreditLedgerRepo
	courses       repos.CourseRepo
}

func NewActivityService(
	log *logger.Logger,
	conversations repos.ConversationRepo,
	messages repos.ConversationMessageRepo,
	contextItems repos.UserContextItemRepo,
	progress repos.UserProgressRepo,
	certificates repos.CertificateRepo,
	aiLogs repos.AILogRepo,
	notes repos.NoteRepo,
	credits repos.CreditLedgerRepo,
	courses repos.CourseRepo,
) ActivityService {
	return &activityService{
		log:           log.With("service", "ActivityService"),
		conversations: conversations,
		messages:      messages,
		contextItems:  contextItems,
		progress:      progress,
		certificates:  certificates,
		aiLogs:        aiLogs,
		notes:         notes,
		credits:       credits,
		courses:       courses,
	}
}

func (s *activityService) Collect(ctx context.Context, userID uuid.UUID) (*ActivitySnapshot, error) {
	var (
		conversations []*types.Conversation
		contextItems  []*types.UserContextItem
		progressRows  []*types.UserProgress
		certificates  []*types.Certificate
		aiLogs        []*types.AILog
		notes         []*types.Note
		ledger        []*types.CreditLedgerEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		conversations, err = s.conversations.ListRecentByUser(gctx, nil, userID, maxConversations)
		return err
	})
	g.Go(func() error {
		var err error
		contextItems, err = s.contextItems.ListByUser(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		progressRows, err = s.progress.ListByUser(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		certificates, err = s.certificates.ListByUser(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		aiLogs, err = s.aiLogs.ListRecentByUser(gctx, nil, userID, maxAILogs)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.notes.ListRecentByUser(gctx, nil, userID, maxNotes)
		return err
	})
	g.Go(func() error {
		var err error
		ledger, err = s.credits.ListByUser(gctx, nil, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A notes-only user still proceeds to generation; every other source
	// being empty is what short-circuits the pipeline.
	if len(conversations) == 0 && len(contextItems) == 0 && len(progressRows) == 0 &&
		len(certificates) == 0 && len(aiLogs) == 0 && len(notes) == 0 {
		s.log.Debug("No activity found for user", "user_id", userID)
		return nil, nil
	}

	convActivity, err := s.resolveConversations(ctx, conversations)
	if err != nil {
		return nil, err
	}

	courseActivity, err := s.resolveCourses(ctx, progressRows, certificates)
	if err != nil {
		return nil, err
	}

	snapshot := &ActivitySnapshot{
		Conversations: convActivity,
		ContextItems:  contextItems,
		Courses:       courseActivity,
		Certificates:  certificates,
		Notes:         notes,
		AIUsage:       summarizeAIUsage(aiLogs),
		TotalCredits:  sumCredits(ledger),
		Counts: types.SourceCounts{
			Conversations:  len(conversations),
			Courses:        len(courseActivity),
			ContextItems:   len(contextItems),
			Notes:          len(notes),
			AIInteractions: len(aiLogs),
			Certificates:   len(certificates),
		},
	}
	snapshot.WatchHours, snapshot.WatchMinutes = watchTime(progressRows)
	return snapshot, nil
}

func (s *activityService) resolveConversations(ctx context.Context, conversations []*types.Conversation) ([]ConversationActivity, error) {
	ids := make([]uuid.UUID, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.ID)
	}
	messages, err := s.messages.ListByConversationIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	byConversation := make(map[uuid.UUID][]*types.ConversationMessage, len(conversations))
	for _, m := range messages {
		byConversation[m.ConversationID] = append(byConversation[m.ConversationID], m)
	}

	out := make([]ConversationActivity, 0, len(conversations))
	for _, c := range conversations {
		tail := byConversation[c.ID]
		if len(tail) > maxMessagesKept {
			tail = tail[len(tail)-maxMessagesKept:]
		}
		out = append(out, ConversationActivity{Conversation: c, Messages: tail})
	}
	return out, nil
}

func (s *activityService) resolveCourses(ctx context.Context, progressRows []*types.UserProgress, certificates []*types.Certificate) ([]CourseActivity, error) {
	seen := map[uuid.UUID]bool{}
	var courseIDs []uuid.UUID
	for _, p := range progressRows {
		if !seen[p.CourseID] {
			seen[p.CourseID] = true
			courseIDs = append(courseIDs, p.CourseID)
		}
	}
	for _, c := range certificates {
		if !seen[c.CourseID] {
			seen[c.CourseID] = true
			courseIDs = append(courseIDs, c.CourseID)
		}
	}

	courses, err := s.courses.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	type tally struct {
		completed int
		total     int
	}
	tallies := map[uuid.UUID]*tally{}
	for _, p := range progressRows {
		t := tallies[p.CourseID]
		if t == nil {
			t = &tally{}
			tallies[p.CourseID] = t
		}
		t.total++
		if p.Completed {
			t.completed++
		}
	}

	out := make([]CourseActivity, 0, len(courseIDs))
	for _, id := range courseIDs {
		ca := CourseActivity{CourseID: id, Title: titles[id]}
		if t := tallies[id]; t != nil && t.total > 0 {
			ca.CompletedLessons = t.completed
			ca.TotalLessons = t.total
			ca.CompletionPct = int(math.Round(float64(t.completed) / float64(t.total) * 100))
		}
		out = append(out, ca)
	}
	return out, nil
}

func summarizeAIUsage(logs []*types.AILog) AIUsage {
	usage := AIUsage{Total: len(logs), PerAgent: map[string]int{}}
	for _, l := range logs {
		usage.PerAgent[l.AgentType]++
		if usage.ActiveFrom.IsZero() || l.CreatedAt.Before(usage.ActiveFrom) {
			usage.ActiveFrom = l.CreatedAt
		}
		if l.CreatedAt.After(usage.ActiveTo) {
			usage.ActiveTo = l.CreatedAt
		}
	}
	for agent := range usage.PerAgent {
		usage.AgentOrder = append(usage.AgentOrder, agent)
	}
	sort.Strings(usage.AgentOrder)
	return usage
}

func sumCredits(ledger []*types.CreditLedgerEntry) int {
	total := 0
	for _, e := range ledger {
		total += e.Delta
	}
	return total
}

func watchTime(progressRows []*types.UserProgress) (hours int, minutes int) {
	seconds := 0
	for _, p := range progressRows {
		seconds += p.WatchSeconds
	}
	hours = seconds / 3600
	minutes = (seconds % 3600) / 60
	return hours, minutes
}
