package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/jonathan/cv-match-engine/internal/types"
)

const defaultQdrantPort = 6334

// QdrantRepository implements ComponentRepository against a Qdrant
// collection holding one point per component, filtered by owning user.
type QdrantRepository struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// NewQdrantRepository creates a Qdrant-backed component repository.
// The URL is parsed for host, gRPC port and TLS usage.
func NewQdrantRepository(urlStr, apiKey, collectionName string, vectorSize uint64) (*QdrantRepository, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	port := defaultQdrantPort
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantRepository{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection creates the component collection if it does not exist.
func (r *QdrantRepository) InitCollection(ctx context.Context) error {
	exists, err := r.client.CollectionExists(ctx, r.collectionName)
	if err != nil {
		return &Error{Op: "collection check", Cause: err}
	}
	if exists {
		return nil
	}

	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     r.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &Error{Op: "collection create", Cause: err}
	}
	return nil
}

// UpsertComponent stores one component with its embedding for a user.
// Components without an ID are assigned one.
func (r *QdrantRepository) UpsertComponent(ctx context.Context, userID string, component types.Component) error {
	if component.ID == "" {
		component.ID = uuid.NewString()
	}
	if len(component.Embedding) == 0 {
		return &Error{Op: "upsert", Cause: fmt.Errorf("component %s has no embedding", component.ID)}
	}

	// The payload keeps the embedding out of the stored document; Qdrant
	// owns the vector.
	vector := component.Embedding
	component.Embedding = nil
	doc, err := json.Marshal(component)
	if err != nil {
		return &Error{Op: "upsert", Cause: err}
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(userID, component.ID)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"user_id":      userID,
			"component_id": component.ID,
			"type":         string(component.Type),
			"component":    string(doc),
		}),
	}

	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return &Error{Op: "upsert", Cause: err}
	}
	return nil
}

// DeleteComponent removes a user's component from the collection.
func (r *QdrantRepository) DeleteComponent(ctx context.Context, userID, componentID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID),
			qdrant.NewMatch("component_id", componentID),
		},
	}

	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: r.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: filter},
		},
	})
	if err != nil {
		return &Error{Op: "delete", Cause: err}
	}
	return nil
}

// SimilaritySearch implements ComponentRepository.
func (r *QdrantRepository) SimilaritySearch(ctx context.Context, userID string, vector []float32, topK int) ([]Match, error) {
	results, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
			},
		},
		Limit:       qdrant.PtrOf(uint64(topK)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &Error{Op: "similarity search", Cause: err}
	}

	matches := make([]Match, 0, len(results))
	for _, point := range results {
		doc, ok := point.Payload["component"]
		if !ok {
			continue
		}
		raw, ok := doc.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			continue
		}

		var component types.Component
		if err := json.Unmarshal([]byte(raw.StringValue), &component); err != nil {
			return nil, &Error{Op: "similarity search", Cause: fmt.Errorf("malformed component payload: %w", err)}
		}

		matches = append(matches, Match{
			Component:  component,
			Similarity: float64(point.Score),
		})
	}

	return matches, nil
}

// pointID derives a deterministic point UUID from the owning user and
// component, so repeated upserts overwrite instead of duplicating.
func pointID(userID, componentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"/"+componentID)).String()
}
