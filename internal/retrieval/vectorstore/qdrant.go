package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// payloadContentKey is the payload field holding the document's original
// text, set aside from the rest of the metadata on read.
const payloadContentKey = "__content__"

// QdrantStore is a Store backed by a Qdrant collection. It embeds the
// query itself via Embedder rather than relying on server-side
// embedding, using a client-side embed-then-query flow.
type QdrantStore struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
}

// NewQdrantStore wraps an existing Qdrant client for search against
// collectionName.
func NewQdrantStore(client *qdrant.Client, embedder Embedder, collectionName string) *QdrantStore {
	return &QdrantStore{client: client, embedder: embedder, collectionName: collectionName}
}

func (s *QdrantStore) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, voxerr.New(voxerr.Internal, "vectorstore.QdrantStore.Search.embed", err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          ptrUint64(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if req.MinScore > 0 {
		threshold := float32(req.MinScore)
		query.ScoreThreshold = &threshold
	}
	if len(req.Filter) > 0 {
		query.Filter = equalityFilter(req.Filter)
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "vectorstore.QdrantStore.Search.query", err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, p := range scored {
		metadata := map[string]string{}
		content := ""
		for k, v := range p.GetPayload() {
			if k == payloadContentKey {
				content = v.GetStringValue()
				continue
			}
			metadata[k] = stringValue(v)
		}
		hits = append(hits, Hit{
			ID:       idString(p.GetId()),
			Content:  content,
			Score:    float64(p.GetScore()),
			Metadata: metadata,
		})
	}
	return hits, nil
}

// equalityFilter builds a qdrant.Filter requiring every key in eq to
// match, a conjunctive-equality contract in place of a general filter
// AST.
func equalityFilter(eq map[string]string) *qdrant.Filter {
	conditions := make([]*qdrant.Condition, 0, len(eq))
	for k, v := range eq {
		conditions = append(conditions, qdrant.NewMatch(k, v))
	}
	return &qdrant.Filter{Must: conditions}
}

func stringValue(v *qdrant.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.Kind.(*qdrant.Value_StringValue); ok {
		return s.StringValue
	}
	return fmt.Sprintf("%v", v.Kind)
}

func idString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func ptrUint64(v uint64) *uint64 { return &v }
