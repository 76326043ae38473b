package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mentora-app/mentora-backend/internal/clients/pinecone"
	"github.com/mentora-app/mentora-backend/internal/logger"
)

// EmbedIndexer mirrors the embedding collaborator's two entry points: index a
// newly created item, or refresh the vector for one that changed. Callers
// treat both as best-effort.
type EmbedIndexer interface {
	CreateItemEmbedding(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string, body string, collectionID *uuid.UUID, metadata map[string]any) error
	UpdateItemEmbedding(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string, body string, collectionID *uuid.UUID, metadata map[string]any) error
}

type embedIndexer struct {
	log *logger.Logger
	ai  AIClient
	vec pinecone.VectorStore
}

func NewEmbedIndexer(log *logger.Logger, ai AIClient, vec pinecone.VectorStore) (EmbedIndexer, error) {
	if ai == nil {
		return nil, fmt.Errorf("ai client required")
	}
	if vec == nil {
		return nil, fmt.Errorf("vector store required")
	}
	return &embedIndexer{
		log: log.With("service", "EmbedIndexer"),
		ai:  ai,
		vec: vec,
	}, nil
}

func (s *embedIndexer) CreateItemEmbedding(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string, body string, collectionID *uuid.UUID, metadata map[string]any) error {
	return s.index(ctx, userID, itemID, itemType, body, collectionID, metadata)
}

// UpdateItemEmbedding and CreateItemEmbedding are the same operation against
// an idempotent upsert; both exist to match the collaborator's surface.
func (s *embedIndexer) UpdateItemEmbedding(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string, body string, collectionID *uuid.UUID, metadata map[string]any) error {
	return s.index(ctx, userID, itemID, itemType, body, collectionID, metadata)
}

func (s *embedIndexer) index(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string, body string, collectionID *uuid.UUID, metadata map[string]any) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("empty embedding body for item %s", itemID)
	}

	vecs, err := s.ai.Embed(ctx, []string{body})
	if err != nil {
		return fmt.Errorf("embed item %s: %w", itemID, err)
	}

	meta := map[string]any{
		"user_id":   userID.String(),
		"item_type": itemType,
	}
	if collectionID != nil {
		meta["collection_id"] = collectionID.String()
	}
	for k, v := range metadata {
		meta[k] = v
	}

	return s.vec.Upsert(ctx, userID.String(), []pinecone.Vector{{
		ID:       itemID.String(),
		Values:   vecs[0],
		Metadata: meta,
	}})
}
