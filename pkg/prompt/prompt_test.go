package prompt_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/prompt"
)

var _ = Describe("Analysis", func() {
	It("embeds the code verbatim ahead of the instructions", func() {
		code := "import os\n\ndef f():\n    return os.getcwd()\n"
		p := prompt.Analysis(code)

		Expect(p).To(ContainSubstring(code))
		Expect(strings.Index(p, code)).To(BeNumerically("<", strings.Index(p, "strictly follow")))
		Expect(p).To(ContainSubstring("missing imports"))
		Expect(p).To(ContainSubstring("Never rewrite or execute code"))
	})

	It("does not shorten long input", func() {
		code := strings.Repeat("x = 1\n", 5000)
		Expect(prompt.Analysis(code)).To(ContainSubstring(code))
	})
})

var _ = Describe("Dialogue", func() {
	history := []memory.Relevant{
		{Key: "what is x?", Payload: "an int", Score: 0.9},
		{Key: "rename x", Payload: "call it count", Score: 0.5},
	}

	It("places subject, history and input in order", func() {
		p := prompt.Dialogue("x = 1", history, "is x mutable?")

		subject := strings.Index(p, "x = 1")
		past := strings.Index(p, "what is x? -> an int\nrename x -> call it count")
		input := strings.Index(p, "User: is x mutable?")

		Expect(subject).To(BeNumerically(">=", 0))
		Expect(past).To(BeNumerically(">", subject))
		Expect(input).To(BeNumerically(">", past))
		Expect(p).To(HaveSuffix("User: is x mutable?"))
	})

	It("keeps the persona rules", func() {
		p := prompt.Dialogue("", nil, "hi")
		Expect(p).To(ContainSubstring("Never mention the underlying model"))
		Expect(p).To(ContainSubstring("Only apologize"))
	})

	It("is well formed with no history", func() {
		p := prompt.Dialogue("x = 1", nil, "hi")
		Expect(p).To(ContainSubstring("Previous discussion:\n\n\n"))
	})
})

var _ = Describe("FormatHistory", func() {
	It("joins entries with newlines", func() {
		Expect(prompt.FormatHistory([]memory.Relevant{
			{Key: "a", Payload: "b"},
			{Key: "c", Payload: "d"},
		})).To(Equal("a -> b\nc -> d"))
	})

	It("renders nothing for no entries", func() {
		Expect(prompt.FormatHistory(nil)).To(BeEmpty())
	})
})
