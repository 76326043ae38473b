package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
	"github.com/mentora-app/mentora-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "mentora", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
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
		&types.PersonalInsight{},
		&types.AgentPrompt{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		table  string
		name   string
		column string
		ref    string
	}{
		{"conversation", "fk_conversation_user_id", "user_id", `"user"("id")`},
		{"conversation_message", "fk_conversation_message_conversation_id", "conversation_id", `"conversation"("id")`},
		{"user_collection", "fk_user_collection_user_id", "user_id", `"user"("id")`},
		{"user_context_item", "fk_user_context_item_user_id", "user_id", `"user"("id")`},
		{"user_progress", "fk_user_progress_user_id", "user_id", `"user"("id")`},
		{"certificate", "fk_certificate_user_id", "user_id", `"user"("id")`},
		{"ai_log", "fk_ai_log_user_id", "user_id", `"user"("id")`},
		{"note", "fk_note_user_id", "user_id", `"user"("id")`},
		{"user_credits_ledger", "fk_user_credits_ledger_user_id", "user_id", `"user"("id")`},
		{"personal_insight", "fk_personal_insight_user_id", "user_id", `"user"("id")`},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					ALTER TABLE "%s" ADD CONSTRAINT "%s" FOREIGN KEY ("%s") REFERENCES %s ON DELETE CASCADE;
				END IF;
			END $$;
		`, c.name, c.table, c.name, c.column, c.ref)
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Failed to add foreign key constraint", "constraint", c.name, "error", err)
			return err
		}
	}
	s.log.Info("Postgres migration complete")
	return nil
}
