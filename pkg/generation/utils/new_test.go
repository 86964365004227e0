package generationutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/credentials"
	"github.com/papercomputeco/mentor/pkg/generation/anthropic"
	"github.com/papercomputeco/mentor/pkg/generation/cohere"
	"github.com/papercomputeco/mentor/pkg/generation/ollama"
	"github.com/papercomputeco/mentor/pkg/generation/openai"
	generationutils "github.com/papercomputeco/mentor/pkg/generation/utils"
)

var _ = Describe("NewGenerator", func() {
	BeforeEach(func() {
		GinkgoT().Setenv("COHERE_API_KEY", "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
	})

	It("defaults to cohere", func() {
		g, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{APIKey: "co"})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&cohere.Generator{}))
	})

	It("fails without a key for hosted providers", func() {
		_, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{
			ProviderType: generationutils.ProviderOpenAI,
		})
		Expect(err).To(MatchError(ContainSubstring("OPENAI_API_KEY")))
	})

	It("reads the key from the environment", func() {
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "sk-ant")

		g, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{
			ProviderType: generationutils.ProviderAnthropic,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&anthropic.Generator{}))
	})

	It("prefers stored credentials over the environment", func() {
		mgr, err := credentials.NewManager(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetKey("openai", "stored")).To(Succeed())

		g, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{
			ProviderType: generationutils.ProviderOpenAI,
			CredMgr:      mgr,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&openai.Generator{}))
	})

	It("builds ollama without a key", func() {
		g, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{
			ProviderType: generationutils.ProviderOllama,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&ollama.Generator{}))
	})

	It("rejects unknown providers", func() {
		_, err := generationutils.NewGenerator(&generationutils.NewGeneratorOpts{ProviderType: "bard"})
		Expect(err).To(MatchError(ContainSubstring("unsupported generation provider: bard")))
	})
})
