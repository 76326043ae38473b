package pinecone

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mentora-app/mentora-backend/internal/logger"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type recordingClient struct {
	describeHost string

	upsertHost string
	upsertReq  UpsertRequest
	upserts    int
}

func (c *recordingClient) DescribeIndex(ctx context.Context, indexName string) (*IndexDescription, error) {
	return &IndexDescription{Name: indexName, Host: c.describeHost}, nil
}

func (c *recordingClient) UpsertVectors(ctx context.Context, host string, req UpsertRequest) (*UpsertResponse, error) {
	c.upsertHost = host
	c.upsertReq = req
	c.upserts++
	return &UpsertResponse{UpsertedCount: int64(len(req.Vectors))}, nil
}

func newTestStore(t *testing.T, pc Client) VectorStore {
	t.Helper()
	t.Setenv("PINECONE_INDEX_NAME", "mentora-test")
	t.Setenv("PINECONE_INDEX_HOST", "index.test.pinecone.io")
	t.Setenv("PINECONE_NAMESPACE_PREFIX", "mentora")

	store, err := NewVectorStore(nopLogger(), pc)
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	return store
}

func TestUpsert_QualifiesNamespaceWithPrefix(t *testing.T) {
	pc := &recordingClient{}
	store := newTestStore(t, pc)

	vectors := []Vector{{ID: "item-1", Values: []float32{0.1, 0.2}}}
	if err := store.Upsert(context.Background(), "user-abc", vectors); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if pc.upsertHost != "index.test.pinecone.io" {
		t.Fatalf("host = %q", pc.upsertHost)
	}
	if pc.upsertReq.Namespace != "mentora:user-abc" {
		t.Fatalf("namespace = %q", pc.upsertReq.Namespace)
	}
	if len(pc.upsertReq.Vectors) != 1 || pc.upsertReq.Vectors[0].ID != "item-1" {
		t.Fatalf("vectors = %+v", pc.upsertReq.Vectors)
	}
}

func TestUpsert_EmptyNamespaceFallsBackToPrefix(t *testing.T) {
	pc := &recordingClient{}
	store := newTestStore(t, pc)

	if err := store.Upsert(context.Background(), "  ", []Vector{{ID: "item-2"}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if pc.upsertReq.Namespace != "mentora" {
		t.Fatalf("namespace = %q", pc.upsertReq.Namespace)
	}
}

func TestNewVectorStore_ResolvesHostViaDescribeIndex(t *testing.T) {
	pc := &recordingClient{describeHost: "resolved.test.pinecone.io"}

	t.Setenv("PINECONE_INDEX_NAME", "mentora-test")
	t.Setenv("PINECONE_INDEX_HOST", "")
	t.Setenv("PINECONE_NAMESPACE_PREFIX", "mentora")

	store, err := NewVectorStore(nopLogger(), pc)
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}

	if err := store.Upsert(context.Background(), "user-abc", []Vector{{ID: "item-3"}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if pc.upsertHost != "resolved.test.pinecone.io" {
		t.Fatalf("host = %q", pc.upsertHost)
	}
}

func TestNewVectorStore_RequiresIndexName(t *testing.T) {
	t.Setenv("PINECONE_INDEX_NAME", "")
	t.Setenv("PINECONE_INDEX_HOST", "index.test.pinecone.io")

	if _, err := NewVectorStore(nopLogger(), &recordingClient{}); err == nil {
		t.Fatal("expected error without PINECONE_INDEX_NAME")
	}
}
