package chromem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/vector"
	"github.com/papercomputeco/mentor/pkg/vector/chromem"
)

var _ = Describe("Driver", func() {
	It("implements vector.Driver", func() {
		var _ vector.Driver = (*chromem.Driver)(nil)
	})

	It("requires dimensions", func() {
		_, err := chromem.NewDriver(chromem.Config{}, nil)
		Expect(err).To(MatchError(vector.ErrNoDimensions))
	})

	Describe("in memory", func() {
		var driver *chromem.Driver

		BeforeEach(func() {
			var err error
			driver, err = chromem.NewDriver(chromem.Config{Dimensions: 3}, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns nothing from an empty collection", func(ctx SpecContext) {
			results, err := driver.Query(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())

			ids, err := driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})

		Context("with turns", func() {
			BeforeEach(func(ctx SpecContext) {
				Expect(driver.Add(ctx, []vector.Document{
					{ID: "0", Key: "original_code", Payload: "x = 1", Embedding: []float32{1, 0, 0}},
					{ID: "1", Key: "what is x", Payload: "an int", Embedding: []float32{0, 1, 0}},
				})).To(Succeed())
			})

			It("clamps topK to the collection size", func(ctx SpecContext) {
				results, err := driver.Query(ctx, []float32{0, 1, 0}, 5)
				Expect(err).NotTo(HaveOccurred())
				Expect(results).To(HaveLen(2))
				Expect(results[0].ID).To(Equal("1"))
				Expect(results[0].Key).To(Equal("what is x"))
				Expect(results[0].Payload).To(Equal("an int"))
				Expect(results[0].Score).To(BeNumerically(">", results[1].Score))
			})

			It("lists every id", func(ctx SpecContext) {
				ids, err := driver.ListIDs(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).To(ConsistOf("0", "1"))
			})

			It("overwrites a document with the same id", func(ctx SpecContext) {
				Expect(driver.Add(ctx, []vector.Document{
					{ID: "0", Key: "original_code", Payload: "x = 2", Embedding: []float32{1, 0, 0}},
				})).To(Succeed())

				docs, err := driver.Get(ctx, []string{"0", "nope"})
				Expect(err).NotTo(HaveOccurred())
				Expect(docs).To(HaveLen(1))
				Expect(docs[0].Payload).To(Equal("x = 2"))
			})

			It("deletes documents", func(ctx SpecContext) {
				Expect(driver.Delete(ctx, []string{"0"})).To(Succeed())
				ids, err := driver.ListIDs(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).To(ConsistOf("1"))
			})
		})
	})

	It("persists to disk across reopen", func(ctx SpecContext) {
		cfg := chromem.Config{Path: GinkgoT().TempDir(), Dimensions: 3}

		first, err := chromem.NewDriver(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Add(ctx, []vector.Document{
			{ID: "4", Key: "k", Payload: "p", Embedding: []float32{0, 0, 1}},
		})).To(Succeed())
		Expect(first.Close()).To(Succeed())

		second, err := chromem.NewDriver(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		docs, err := second.Get(ctx, []string{"4"})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Key).To(Equal("k"))
	})
})
