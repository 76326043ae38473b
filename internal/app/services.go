package app

import (
	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/services"
)

type Services struct {
	AI                services.AIClient
	EmbedIndexer      services.EmbedIndexer
	Activity          services.ActivityService
	PreferenceProfile services.PreferenceProfileService
	Insight           services.InsightService
}

func wireServices(log *logger.Logger, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	ai, err := services.NewAIClient(log)
	if err != nil {
		return Services{}, err
	}

	embed, err := services.NewEmbedIndexer(log, ai, clients.VectorStore)
	if err != nil {
		return Services{}, err
	}

	activity := services.NewActivityService(
		log,
		reposet.Conversation,
		reposet.ConversationMessage,
		reposet.UserContextItem,
		reposet.UserProgress,
		reposet.Certificate,
		reposet.AILog,
		reposet.Note,
		reposet.CreditLedger,
		reposet.Course,
	)

	profiles := services.NewPreferenceProfileService(
		log,
		reposet.PersonalInsight,
		reposet.UserContextItem,
		embed,
		clients.Locker,
	)

	insight := services.NewInsightService(
		log,
		activity,
		ai,
		reposet.PersonalInsight,
		reposet.UserContextItem,
		reposet.UserCollection,
		reposet.AgentPrompt,
		profiles,
		embed,
	)

	return Services{
		AI:                ai,
		EmbedIndexer:      embed,
		Activity:          activity,
		PreferenceProfile: profiles,
		Insight:           insight,
	}, nil
}
