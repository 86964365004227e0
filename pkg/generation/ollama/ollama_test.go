package ollama_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/generation"
	"github.com/papercomputeco/mentor/pkg/generation/ollama"
)

var _ = Describe("Generator", func() {
	var (
		server *httptest.Server
		body   map[string]any
		status int
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			json.NewDecoder(r.Body).Decode(&body)
			if status != http.StatusOK {
				http.Error(w, "model not found", status)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{"role": "assistant", "content": "Looks fine."},
				"done":    true,
			})
		}))
		DeferCleanup(server.Close)
	})

	It("sends a non-streaming chat request with options", func(ctx SpecContext) {
		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL, Model: "qwen"})
		DeferCleanup(g.Close)

		text, err := g.Generate(ctx, "review this", generation.Params{Temperature: 0, MaxTokens: 42})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Looks fine."))

		Expect(body).To(HaveKeyWithValue("model", "qwen"))
		Expect(body).To(HaveKeyWithValue("stream", false))
		Expect(body["options"]).To(HaveKeyWithValue("num_predict", BeNumerically("==", 42)))
		Expect(body["messages"]).To(ConsistOf(HaveKeyWithValue("content", "review this")))
	})

	It("reports non-200 responses", func(ctx SpecContext) {
		status = http.StatusNotFound
		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, "x", generation.DefaultParams())
		Expect(err).To(MatchError(ContainSubstring("status 404")))
	})

	It("uses the default model", func(ctx SpecContext) {
		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL})
		_, err := g.Generate(ctx, "x", generation.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(HaveKeyWithValue("model", ollama.DefaultModel))
	})
})
