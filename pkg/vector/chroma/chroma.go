// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/utils"
	"github.com/papercomputeco/mentor/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for conversation turns.
	DefaultCollectionName = "chat_history"

	// responseMetadataKey holds the turn payload in Chroma metadata. The turn
	// key is stored as the Chroma document text.
	responseMetadataKey = "response"

	defaultMaxRetries    = 5
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds how many times the collection lookup is attempted
	// while Chroma is starting up. Defaults to 5.
	MaxRetries int

	// RetryDelay is the initial delay between attempts; it doubles up to
	// MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver, retrying the collection
// lookup with exponential backoff.
func NewDriver(c Config, log *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}
	log = logger.OrNop(log)

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        strings.TrimRight(c.URL, "/"),
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		collectionID, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = collectionID
			log.Info("connected to chroma",
				"url", c.URL,
				"collection", collectionName,
				"collection_id", collectionID,
			)
			return d, nil
		}

		lastErr = err
		log.Debug("chroma not ready, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(delay)
			delay = min(delay*2, maxDelay)
		}
	}

	return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %v",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

func (d *Driver) collectionURL(suffix string) string {
	return fmt.Sprintf("%s%s/%s%s", d.baseURL, collectionsPath, d.collectionID, suffix)
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s%s/%s", d.baseURL, collectionsPath, d.collectionName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating get request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	var created chromaCollection
	err = d.post(ctx, d.baseURL+collectionsPath, map[string]string{"name": d.collectionName}, &created)
	if err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return created.ID, nil
}

// post sends a JSON body and decodes a JSON response into out (if non-nil).
func (d *Driver) post(ctx context.Context, url string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// count returns the number of documents in the collection.
func (d *Driver) count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.collectionURL("/count"), nil)
	if err != nil {
		return 0, fmt.Errorf("creating count request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: sending count request: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading count response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(body))
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("parsing count %q: %w", string(body), err)
	}

	return n, nil
}

// Add stores documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	reqBody := chromaAddRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}

	for i, doc := range docs {
		reqBody.IDs[i] = doc.ID
		reqBody.Embeddings[i] = doc.Embedding
		reqBody.Metadatas[i] = map[string]any{responseMetadataKey: doc.Payload}
		reqBody.Documents[i] = doc.Key
	}

	if err := d.post(ctx, d.collectionURL("/upsert"), reqBody, nil); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chroma", "count", len(docs))

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	n, err := d.count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []vector.QueryResult{}, nil
	}
	topK = min(topK, n)

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "documents", "distances"},
	}

	var queryResp chromaQueryResponse
	if err := d.post(ctx, d.collectionURL("/query"), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	results := []vector.QueryResult{}

	// Only one query embedding is sent, so only the first group matters.
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]

	var distances []float32
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}
	var metadatas []map[string]any
	if len(queryResp.Metadatas) > 0 {
		metadatas = queryResp.Metadatas[0]
	}
	var documents []string
	if len(queryResp.Documents) > 0 {
		documents = queryResp.Documents[0]
	}

	for i, id := range ids {
		result := vector.QueryResult{
			Document: vector.Document{ID: id},
		}
		if i < len(documents) {
			result.Key = documents[i]
		}
		if i < len(metadatas) {
			result.Payload = payloadFrom(metadatas[i])
		}
		// Lower distance = higher similarity
		if i < len(distances) {
			result.Score = 1.0 / (1.0 + distances[i])
		}
		results = append(results, result)
	}

	d.logger.Debug("queried chroma", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return d.get(ctx, ids, []string{"metadatas", "documents", "embeddings"})
}

// ListIDs returns every document ID in the collection.
func (d *Driver) ListIDs(ctx context.Context) ([]string, error) {
	docs, err := d.get(ctx, nil, []string{})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

func (d *Driver) get(ctx context.Context, ids []string, include []string) ([]vector.Document, error) {
	var getResp chromaGetResponse
	if err := d.post(ctx, d.collectionURL("/get"), chromaGetRequest{IDs: ids, Include: include}, &getResp); err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(getResp.IDs))
	for i, id := range getResp.IDs {
		docs[i] = vector.Document{ID: id}
		if i < len(getResp.Documents) {
			docs[i].Key = getResp.Documents[i]
		}
		if i < len(getResp.Metadatas) {
			docs[i].Payload = payloadFrom(getResp.Metadatas[i])
		}
		if i < len(getResp.Embeddings) {
			docs[i].Embedding = getResp.Embeddings[i]
		}
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.post(ctx, d.collectionURL("/delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma", "count", len(ids))

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func payloadFrom(meta map[string]any) string {
	if meta == nil {
		return ""
	}
	payload, _ := meta[responseMetadataKey].(string)
	return payload
}
