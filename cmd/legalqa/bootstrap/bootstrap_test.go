package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/cmd/legalqa/bootstrap"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
	"github.com/papercomputeco/legalqa/pkg/logger"
	testutils "github.com/papercomputeco/legalqa/pkg/utils/test"
)

const codeTravail = `Code du travail
=== ARTICLE ===
Titre: Article L3141-3
Contenu:
Le salarié a droit à un congé de deux jours et demi ouvrables par mois de travail effectif.
=== ARTICLE ===
Titre: Article L1237-1
Contenu:
En cas de démission, l'existence et la durée du préavis sont fixées par la loi.
`

var _ = Describe("SplitBrokers", func() {
	DescribeTable("parses comma separated lists",
		func(raw string, expected []string) {
			Expect(bootstrap.SplitBrokers(raw)).To(Equal(expected))
		},
		Entry("empty", "", nil),
		Entry("single", "localhost:9092", []string{"localhost:9092"}),
		Entry("blanks dropped", " a:9092, ,b:9092 ", []string{"a:9092", "b:9092"}),
	)
})

var _ = Describe("NewService", func() {
	var (
		ctx     context.Context
		cfg     *config.Config
		dataDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dataDir = GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dataDir, "texts"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dataDir, "texts", "code_travail.txt"), []byte(codeTravail), 0o600)).To(Succeed())

		cfg = config.NewDefaultConfig()
		cfg.Corpus.DataDir = dataDir
	})

	It("wires a lexical service over the corpus directory", func() {
		svc, report, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer svc.Close()

		Expect(report.Files).To(Equal(1))
		Expect(report.Records).To(Equal(2))
		Expect(report.Fallback).To(BeFalse())

		health := svc.Health()
		Expect(health.RAGReady).To(BeTrue())
		Expect(health.Engine).To(Equal("lexical"))
		Expect(health.Records).To(Equal(2))

		_, err = svc.Ask(ctx, "préavis de démission")
		Expect(err).NotTo(HaveOccurred())
		entries, err := svc.History(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("falls back to the built-in records for a missing directory", func() {
		cfg.Corpus.DataDir = filepath.Join(dataDir, "missing")

		svc, report, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg})
		Expect(err).NotTo(HaveOccurred())
		defer svc.Close()

		Expect(report.Fallback).To(BeTrue())
		Expect(svc.Health().Records).To(BeNumerically(">", 0))
	})

	It("falls back to the lexical engine when the embedder cannot be built", func() {
		cfg.Engine.Kind = config.EngineEmbedding
		cfg.Embedding.Provider = "unknown"

		svc, _, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg})
		Expect(err).NotTo(HaveOccurred())
		defer svc.Close()

		Expect(svc.Health().Engine).To(Equal("lexical"))
	})

	It("rejects an unknown engine kind", func() {
		cfg.Engine.Kind = "neural"

		_, _, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg})
		Expect(err).To(HaveOccurred())
	})

	It("skips history when disabled", func() {
		svc, _, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg, NoHistory: true})
		Expect(err).NotTo(HaveOccurred())
		defer svc.Close()

		_, err = svc.Ask(ctx, "congé payé")
		Expect(err).NotTo(HaveOccurred())
		entries, err := svc.History(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("opens a SQLite history at the configured path", func() {
		configDir := GinkgoT().TempDir()
		cfg.History.Provider = config.HistorySQLite
		cfg.History.SQLitePath = filepath.Join(configDir, "history.db")

		svc, _, err := bootstrap.NewService(ctx, &bootstrap.Options{Config: cfg, ConfigDir: configDir})
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Ask(ctx, "congé payé")
		Expect(err).NotTo(HaveOccurred())
		Expect(svc.Close()).To(Succeed())

		_, err = os.Stat(filepath.Join(configDir, "history.db"))
		Expect(err).NotTo(HaveOccurred())
	})
})

type closingEngine struct {
	testutils.MockEngine
	closed bool
}

func (e *closingEngine) Close() error {
	e.closed = true
	return nil
}

type closingHistory struct {
	*inmemory.Driver
	closed bool
}

func (h *closingHistory) Close() error {
	h.closed = true
	return nil
}

var _ = Describe("CloseBackends", func() {
	It("closes the engine, the history driver and the publisher", func() {
		eng := &closingEngine{}
		hist := &closingHistory{Driver: inmemory.NewDriver()}
		pub := testutils.NewMockPublisher()

		bootstrap.CloseBackends(eng, hist, pub)

		Expect(eng.closed).To(BeTrue())
		Expect(hist.closed).To(BeTrue())
		Expect(pub.Closed).To(BeTrue())
	})

	It("skips backends that were never opened", func() {
		eng := &closingEngine{}
		Expect(func() { bootstrap.CloseBackends(eng, nil, nil) }).NotTo(Panic())
		Expect(eng.closed).To(BeTrue())
	})
})
