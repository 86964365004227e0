package cohere_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/generation"
	"github.com/papercomputeco/mentor/pkg/generation/cohere"
)

var _ = Describe("Generator", func() {
	It("requires an API key", func() {
		_, err := cohere.NewGenerator(cohere.Config{})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("sends the prompt with deterministic parameters", func(ctx SpecContext) {
		var body map[string]any
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"text":          "Consider importing sys.",
				"generation_id": "gen-1",
			})
		}))
		DeferCleanup(server.Close)

		g, err := cohere.NewGenerator(cohere.Config{APIKey: "co-key", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, err := g.Generate(ctx, "review this", generation.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Consider importing sys."))

		Expect(auth).To(Equal("Bearer co-key"))
		Expect(body).To(HaveKeyWithValue("message", "review this"))
		Expect(body).To(HaveKeyWithValue("model", cohere.DefaultModel))
		Expect(body).To(HaveKeyWithValue("temperature", BeNumerically("==", 0)))
		Expect(body).To(HaveKeyWithValue("max_tokens", BeNumerically("==", 300)))
	})
})
