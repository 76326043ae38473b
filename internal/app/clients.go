package app

import (
	"os"
	"strings"
	"time"

	"github.com/mentora-app/mentora-backend/internal/clients/pinecone"
	"github.com/mentora-app/mentora-backend/internal/clients/redis"
	"github.com/mentora-app/mentora-backend/internal/logger"
)

type Clients struct {
	VectorStore pinecone.VectorStore
	Locker      redis.Locker
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	pc, err := pinecone.New(log, pinecone.Config{
		APIKey:  strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return Clients{}, err
	}
	vec, err := pinecone.NewVectorStore(log, pc)
	if err != nil {
		return Clients{}, err
	}

	// Redis is optional: without it, overlapping profile resyncs for the
	// same user are simply allowed.
	var locker redis.Locker
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		locker, err = redis.NewLocker(log)
		if err != nil {
			return Clients{}, err
		}
	} else {
		log.Warn("REDIS_ADDR not set; profile resync single-flight disabled")
	}

	return Clients{VectorStore: vec, Locker: locker}, nil
}
