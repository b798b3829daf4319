// Package qdrant provides a vector.Driver over Qdrant's gRPC API.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

const (
	DefaultCollectionName = "legalqa_articles"
	DefaultPort           = 6334

	payloadRecordID = "record_id"
	payloadChecksum = "checksum"
)

// pointNamespace scopes the name-based point ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:legalqa:article"))

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the gRPC endpoint, "host:port" or "http(s)://host:port".
	Target string

	CollectionName string

	// Dimensions sizes the collection when it has to be created.
	Dimensions uint

	APIKey string
}

// Driver implements vector.Driver with a Qdrant collection using cosine
// distance. Point ids are derived from record ids, which stay in the payload.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// PointID returns the stable Qdrant point id for a record id.
func PointID(recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordID)).String()
}

// ParseTarget splits a target into host, port and TLS flag.
func ParseTarget(target string) (host string, port int, useTLS bool, err error) {
	if target == "" {
		return "", 0, false, errors.New("qdrant target is required")
	}

	hostport := target
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", 0, false, fmt.Errorf("parsing qdrant target: %w", err)
		}
		hostport = u.Host
		useTLS = u.Scheme == "https"
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, DefaultPort, useTLS, nil
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return "", 0, false, fmt.Errorf("invalid qdrant port %q", portStr)
	}
	return host, port, useTLS, nil
}

// NewDriver connects to Qdrant and creates the collection when missing.
func NewDriver(ctx context.Context, c Config, log *slog.Logger) (*Driver, error) {
	if log == nil {
		log = logger.Nop()
	}
	if c.CollectionName == "" {
		c.CollectionName = DefaultCollectionName
	}
	if c.Dimensions == 0 {
		return nil, errors.New("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host, port, useTLS, err := ParseTarget(c.Target)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, c.CollectionName)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %w", vector.ErrConnection, c.CollectionName, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.CollectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", c.CollectionName, err)
		}
		log.Info("created qdrant collection", "collection", c.CollectionName, "dimensions", c.Dimensions)
	}

	log.Info("connected to qdrant", "host", host, "port", port, "collection", c.CollectionName)
	return &Driver{client: client, collection: c.CollectionName, logger: log}, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func pointIDs(ids []string) []*qdrant.PointId {
	out := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		out[i] = qdrant.NewIDUUID(PointID(id))
	}
	return out
}

// Add upserts documents as points.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(PointID(doc.ID)),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadRecordID: doc.ID,
				payloadChecksum: doc.Checksum,
			}),
		}
	}

	wait := true
	if _, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant", "count", len(docs))
	return nil
}

// Query finds the topK nearest points. Embeddings are not returned.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	hits, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:       payloadString(hit.GetPayload(), payloadRecordID),
				Checksum: payloadString(hit.GetPayload(), payloadChecksum),
			},
			// Cosine collections score by similarity.
			Distance: 1 - hit.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results))
	return results, nil
}

// Get retrieves documents by record id. Embeddings are not returned.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs(ids),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, vector.Document{
			ID:       payloadString(p.GetPayload(), payloadRecordID),
			Checksum: payloadString(p.GetPayload(), payloadChecksum),
		})
	}
	return docs, nil
}

// Delete removes points by record id.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	wait := true
	if _, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(pointIDs(ids)...),
	}); err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant", "count", len(ids))
	return nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
