package sqlitevec_test

import (
	"path/filepath"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/vector"
	"github.com/papercomputeco/mentor/pkg/vector/sqlitevec"
)

func newMemoryDriver() *sqlitevec.Driver {
	driver, err := sqlitevec.NewDriver(sqlitevec.Config{
		DBPath:     ":memory:",
		Dimensions: 4,
	}, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(driver.Close)
	return driver
}

var _ = Describe("Driver", func() {
	Describe("NewDriver", func() {
		It("requires a database path", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{Dimensions: 4}, nil)
			Expect(err).To(MatchError(ContainSubstring("database path is required")))
		})

		It("requires dimensions", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:"}, nil)
			Expect(err).To(MatchError(vector.ErrNoDimensions))
		})
	})

	It("implements vector.Driver", func() {
		var _ vector.Driver = (*sqlitevec.Driver)(nil)
	})

	Describe("on an empty store", func() {
		It("queries to an empty result", func(ctx SpecContext) {
			driver := newMemoryDriver()
			results, err := driver.Query(ctx, []float32{0.1, 0.1, 0.1, 0.1}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())

			ids, err := driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("with stored turns", func() {
		var driver *sqlitevec.Driver

		BeforeEach(func(ctx SpecContext) {
			driver = newMemoryDriver()
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "0", Key: "original_code", Payload: "def f(): pass", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				{ID: "1", Key: "why pass?", Payload: "placeholder body", Embedding: []float32{0.3, 0.3, 0.3, 0.3}},
				{ID: "2", Key: "rename f", Payload: "call it handler", Embedding: []float32{0.5, 0.5, 0.5, 0.5}},
			})).To(Succeed())
		})

		It("returns the nearest turns first with their key and payload", func(ctx SpecContext) {
			results, err := driver.Query(ctx, []float32{0.3, 0.3, 0.3, 0.3}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("1"))
			Expect(results[0].Key).To(Equal("why pass?"))
			Expect(results[0].Payload).To(Equal("placeholder body"))
			Expect(results[0].Score).To(BeNumerically(">=", results[1].Score))
		})

		It("returns every turn when topK exceeds the store size", func(ctx SpecContext) {
			results, err := driver.Query(ctx, []float32{0.3, 0.3, 0.3, 0.3}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})

		It("lists ids in insertion order", func(ctx SpecContext) {
			ids, err := driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"0", "1", "2"}))
		})

		It("gets turns with embeddings and skips unknown ids", func(ctx SpecContext) {
			docs, err := driver.Get(ctx, []string{"2", "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Key).To(Equal("rename f"))
			Expect(docs[0].Embedding).To(HaveLen(4))
			Expect(docs[0].Embedding[0]).To(BeNumerically("~", 0.5, 0.001))
		})

		It("replaces a turn added again under the same id", func(ctx SpecContext) {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "0", Key: "original_code", Payload: "def g(): return 1", Embedding: []float32{0.9, 0.9, 0.9, 0.9}},
			})).To(Succeed())

			docs, err := driver.Get(ctx, []string{"0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs[0].Payload).To(Equal("def g(): return 1"))

			results, err := driver.Query(ctx, []float32{0.9, 0.9, 0.9, 0.9}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("0"))
		})

		It("removes deleted turns from queries and listings", func(ctx SpecContext) {
			Expect(driver.Delete(ctx, []string{"1", "nonexistent"})).To(Succeed())

			results, err := driver.Query(ctx, []float32{0.3, 0.3, 0.3, 0.3}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			for _, r := range results {
				Expect(r.ID).NotTo(Equal("1"))
			}

			ids, err := driver.ListIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"0", "2"}))
		})
	})

	It("gets and deletes more ids than one statement may bind", func(ctx SpecContext) {
		driver := newMemoryDriver()

		const n = 1500
		docs := make([]vector.Document, n)
		ids := make([]string, n)
		for i := range docs {
			ids[i] = strconv.Itoa(i)
			docs[i] = vector.Document{ID: ids[i], Key: "k", Payload: "p", Embedding: []float32{1, 0, 0, 0}}
		}
		Expect(driver.Add(ctx, docs)).To(Succeed())

		got, err := driver.Get(ctx, ids)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(n))

		Expect(driver.Delete(ctx, ids)).To(Succeed())
		left, err := driver.ListIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(left).To(BeEmpty())
	})

	It("persists turns across reopen", func(ctx SpecContext) {
		path := filepath.Join(GinkgoT().TempDir(), "memory.db")
		cfg := sqlitevec.Config{DBPath: path, Dimensions: 4}

		driver, err := sqlitevec.NewDriver(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Add(ctx, []vector.Document{
			{ID: "7", Key: "k", Payload: "p", Embedding: []float32{1, 0, 0, 0}},
		})).To(Succeed())
		Expect(driver.Close()).To(Succeed())

		reopened, err := sqlitevec.NewDriver(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		ids, err := reopened.ListIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"7"}))
	})
})
