package indexer_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/indexer"
	"github.com/papercomputeco/legalqa/pkg/logger"
	testutils "github.com/papercomputeco/legalqa/pkg/utils/test"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

var _ = Describe("Pool", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		store    *testutils.MockVectorDriver
		catalog  *corpus.Catalog
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		store = testutils.NewMockVectorDriver()
		catalog = corpus.NewCatalog(corpus.Builtin()...)
	})

	newPool := func(batch uint) *indexer.Pool {
		pool, err := indexer.NewPool(&indexer.Config{
			VectorDriver: store,
			Embedder:     embedder,
			NumWorkers:   2,
			BatchSize:    batch,
			Logger:       logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return pool
	}

	It("requires a driver and an embedder", func() {
		_, err := indexer.NewPool(&indexer.Config{Embedder: embedder})
		Expect(err).To(HaveOccurred())
	})

	It("embeds every record on the first run", func() {
		stats, err := newPool(4).Index(ctx, catalog)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(indexer.Stats{Total: 6, Embedded: 6}))
		Expect(store.Len()).To(Equal(6))
		Expect(embedder.Calls()).To(Equal(6))
		Expect(store.AddBatches).To(ConsistOf(4, 2))
	})

	It("stores the article checksum", func() {
		_, err := newPool(0).Index(ctx, catalog)
		Expect(err).NotTo(HaveOccurred())

		r := catalog.Records()[0]
		docs, err := store.Get(ctx, []string{r.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Checksum).To(Equal(vector.Checksum(r.Title, r.Content)))
	})

	It("skips unchanged records on the next run", func() {
		pool := newPool(0)
		_, err := pool.Index(ctx, catalog)
		Expect(err).NotTo(HaveOccurred())

		changed := catalog.Records()
		changed[0].Content += " Modifié."
		stats, err := pool.Index(ctx, corpus.NewCatalog(changed...))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(indexer.Stats{Total: 6, Embedded: 1, Skipped: 5}))
		Expect(embedder.Calls()).To(Equal(7))
	})

	It("counts embedding failures without aborting", func() {
		r := catalog.Records()[2]
		embedder.FailOn = r.Title + "\n" + r.Content

		stats, err := newPool(0).Index(ctx, catalog)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Failed).To(Equal(1))
		Expect(stats.Embedded).To(Equal(5))
		Expect(store.Len()).To(Equal(5))
	})

	It("does nothing for an empty catalog", func() {
		stats, err := newPool(0).Index(ctx, corpus.NewCatalog())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(indexer.Stats{}))
	})
})
