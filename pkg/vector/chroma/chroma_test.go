package chroma_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mentorlogger "github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/vector"
	"github.com/papercomputeco/mentor/pkg/vector/chroma"
)

// fakeChroma is a tiny in-memory stand-in for the Chroma v2 REST API. It
// orders query results by insertion and reports a fixed distance per rank.
type fakeChroma struct {
	mu        sync.Mutex
	ids       []string
	documents map[string]string
	metadatas map[string]map[string]any
	queries   []map[string]any
}

func newFakeChroma() *fakeChroma {
	return &fakeChroma{
		documents: map[string]string{},
		metadatas: map[string]map[string]any{},
	}
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/count"):
		fmt.Fprintf(w, "%d", len(f.ids))
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "chat_history"})
	case strings.HasSuffix(path, "/upsert"):
		var body struct {
			IDs       []string         `json:"ids"`
			Documents []string         `json:"documents"`
			Metadatas []map[string]any `json:"metadatas"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		for i, id := range body.IDs {
			if _, ok := f.documents[id]; !ok {
				f.ids = append(f.ids, id)
			}
			f.documents[id] = body.Documents[i]
			f.metadatas[id] = body.Metadatas[i]
		}
		w.Write([]byte("{}"))
	case strings.HasSuffix(path, "/query"):
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.queries = append(f.queries, body)
		n := int(body["n_results"].(float64))
		ids, docs, metas, dists := []string{}, []string{}, []map[string]any{}, []float32{}
		for i, id := range f.ids {
			if i == n {
				break
			}
			ids = append(ids, id)
			docs = append(docs, f.documents[id])
			metas = append(metas, f.metadatas[id])
			dists = append(dists, float32(i))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{ids},
			"documents": [][]string{docs},
			"metadatas": [][]map[string]any{metas},
			"distances": [][]float32{dists},
		})
	case strings.HasSuffix(path, "/get"):
		var body struct {
			IDs []string `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		want := body.IDs
		if len(want) == 0 {
			want = f.ids
		}
		ids, docs, metas := []string{}, []string{}, []map[string]any{}
		for _, id := range want {
			if _, ok := f.documents[id]; !ok {
				continue
			}
			ids = append(ids, id)
			docs = append(docs, f.documents[id])
			metas = append(metas, f.metadatas[id])
		}
		json.NewEncoder(w).Encode(map[string]any{"ids": ids, "documents": docs, "metadatas": metas})
	case strings.HasSuffix(path, "/delete"):
		var body struct {
			IDs []string `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		for _, id := range body.IDs {
			delete(f.documents, id)
			delete(f.metadatas, id)
		}
		kept := f.ids[:0]
		for _, id := range f.ids {
			if _, ok := f.documents[id]; ok {
				kept = append(kept, id)
			}
		}
		f.ids = kept
		w.Write([]byte("{}"))
	default:
		http.NotFound(w, r)
	}
}

var _ = Describe("Driver", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = mentorlogger.Nop()
	})

	Describe("NewDriver", func() {
		It("should return an error when URL is empty", func() {
			_, err := chroma.NewDriver(chroma.Config{URL: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
		})

		It("should succeed after retrying when Chroma becomes available", func() {
			var attempts atomic.Int32

			// Each retry cycle is a GET for the collection followed by a
			// POST to create it. The first two cycles fail.
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempt := attempts.Add(1)
				if attempt <= 4 {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{
					"id":   "test-collection-id",
					"name": "chat_history",
				})
			}))
			defer server.Close()

			driver, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    5,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(attempts.Load()).To(BeNumerically(">=", int32(5)))
		})

		It("should return a connection error after exhausting all retries", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    3,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).To(MatchError(vector.ErrConnection))
			Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
		})
	})

	Describe("against a Chroma server", func() {
		var (
			fake   *fakeChroma
			server *httptest.Server
			driver *chroma.Driver
		)

		BeforeEach(func() {
			fake = newFakeChroma()
			server = httptest.NewServer(fake)

			var err error
			driver, err = chroma.NewDriver(chroma.Config{URL: server.URL}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("returns an empty result without querying an empty collection", func(ctx SpecContext) {
			results, err := driver.Query(ctx, []float32{1, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
			Expect(fake.queries).To(BeEmpty())
		})

		It("round-trips key and payload and clamps n_results to the collection size", func(ctx SpecContext) {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "0", Key: "print(1)", Payload: "looks fine", Embedding: []float32{1, 0}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("0"))
			Expect(results[0].Key).To(Equal("print(1)"))
			Expect(results[0].Payload).To(Equal("looks fine"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 0.001))
			Expect(fake.queries[0]["n_results"]).To(BeNumerically("==", 1))
		})

		It("lists, gets and deletes documents", func(ctx SpecContext) {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "0", Key: "a", Payload: "x", Embedding: []float32{1, 0}},
				{ID: "1", Key: "b", Payload: "y", Embedding: []float32{0, 1}},
			})).To(Succeed())

			ids, err := driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("0", "1"))

			docs, err := driver.Get(ctx, []string{"1", "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Key).To(Equal("b"))

			Expect(driver.Delete(ctx, []string{"0"})).To(Succeed())
			ids, err = driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("1"))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*chroma.Driver)(nil)
		})
	})
})
