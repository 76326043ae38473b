package app

import (
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/repos"
)

type Repos struct {
	Conversation        repos.ConversationRepo
	ConversationMessage repos.ConversationMessageRepo
	UserContextItem     repos.UserContextItemRepo
	UserCollection      repos.UserCollectionRepo
	Course              repos.CourseRepo
	UserProgress        repos.UserProgressRepo
	Certificate         repos.CertificateRepo
	AILog               repos.AILogRepo
	Note                repos.NoteRepo
	CreditLedger        repos.CreditLedgerRepo
	PersonalInsight     repos.PersonalInsightRepo
	AgentPrompt         repos.AgentPromptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Conversation:        repos.NewConversationRepo(db, log),
		ConversationMessage: repos.NewConversationMessageRepo(db, log),
		UserContextItem:     repos.NewUserContextItemRepo(db, log),
		UserCollection:      repos.NewUserCollectionRepo(db, log),
		Course:              repos.NewCourseRepo(db, log),
		UserProgress:        repos.NewUserProgressRepo(db, log),
		Certificate:         repos.NewCertificateRepo(db, log),
		AILog:               repos.NewAILogRepo(db, log),
		Note:                repos.NewNoteRepo(db, log),
		CreditLedger:        repos.NewCreditLedgerRepo(db, log),
		PersonalInsight:     repos.NewPersonalInsightRepo(db, log),
		AgentPrompt:         repos.NewAgentPromptRepo(db, log),
	}
}
