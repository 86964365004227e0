package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("cuts on rune boundaries", func() {
		Expect(Truncate("héllo wörld", 4)).To(Equal("héll..."))
	})
})

var _ = Describe("OneLine", func() {
	It("collapses newlines and indentation", func() {
		code := "def add(a, b):\n    return a + b\n"
		Expect(OneLine(code, 80)).To(Equal("def add(a, b): return a + b"))
	})

	It("truncates after collapsing", func() {
		Expect(OneLine("a\n\n\nb c d", 3)).To(Equal("a b..."))
	})
})
