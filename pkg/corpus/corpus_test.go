package corpus_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/logger"
)

const twoArticles = `Code du travail, extrait
=== ARTICLE ===
Titre: Licenciement
Contenu:
Le licenciement doit être justifié par une cause réelle et sérieuse.
=== ARTICLE ===
Titre: Préavis
Contenu:
Le salarié doit respecter un préavis.
Il varie selon l'ancienneté.
`

var _ = Describe("Catalog", func() {
	It("keeps encounter order and replaces duplicates in place", func() {
		c := corpus.NewCatalog(
			corpus.Record{ID: "a", Title: "A", Content: "one"},
			corpus.Record{ID: "b", Title: "B", Content: "two"},
			corpus.Record{ID: "a", Title: "A2", Content: "three"},
		)

		Expect(c.Len()).To(Equal(2))
		records := c.Records()
		Expect(records[0]).To(Equal(corpus.Record{ID: "a", Title: "A2", Content: "three"}))
		Expect(records[1].ID).To(Equal("b"))

		r, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(r.Content).To(Equal("three"))

		_, ok = c.Get("missing")
		Expect(ok).To(BeFalse())
	})

	It("returns a copy from Records", func() {
		c := corpus.NewCatalog(corpus.Record{ID: "a", Title: "A", Content: "one"})
		records := c.Records()
		records[0].Content = "mutated"

		r, _ := c.Get("a")
		Expect(r.Content).To(Equal("one"))
	})

	It("is safe on a nil receiver", func() {
		var c *corpus.Catalog
		Expect(c.Len()).To(Equal(0))
		Expect(c.Records()).To(BeEmpty())
	})
})

var _ = Describe("ParseDocument", func() {
	It("splits delimited articles into titled records", func() {
		records, skipped := corpus.ParseDocument("code", twoArticles)
		Expect(skipped).To(BeEmpty())
		Expect(records).To(HaveLen(2))

		Expect(records[0].ID).To(Equal("code_1"))
		Expect(records[0].Title).To(Equal("Licenciement"))
		Expect(records[0].Content).To(Equal("Le licenciement doit être justifié par une cause réelle et sérieuse."))

		Expect(records[1].ID).To(Equal("code_2"))
		Expect(records[1].Title).To(Equal("Préavis"))
		Expect(records[1].Content).To(Equal("Le salarié doit respecter un préavis.\nIl varie selon l'ancienneté."))
	})

	It("synthesizes a title from the article index when none is given", func() {
		records, _ := corpus.ParseDocument("code", "=== ARTICLE ===\nContenu:\nSans titre.")
		Expect(records).To(HaveLen(1))
		Expect(records[0].Title).To(Equal("Article 1"))
	})

	It("uses the whole block as content when the content marker is missing", func() {
		records, _ := corpus.ParseDocument("code", "=== ARTICLE ===\nTitre: Salaire\nLe SMIC est revalorisé.")
		Expect(records).To(HaveLen(1))
		Expect(records[0].Title).To(Equal("Salaire"))
		Expect(records[0].Content).To(Equal("Titre: Salaire\nLe SMIC est revalorisé."))
	})

	It("keeps the whole block when the content marker shares the title line", func() {
		records, _ := corpus.ParseDocument("code", "=== ARTICLE ===\nTitre: Congés Contenu:\nCinq semaines.")
		Expect(records).To(HaveLen(1))
		Expect(records[0].Title).To(Equal("Congés"))
		Expect(records[0].Content).To(Equal("Titre: Congés Contenu:\nCinq semaines."))
	})

	It("counts blank blocks when numbering articles", func() {
		records, skipped := corpus.ParseDocument("code", "=== ARTICLE ===\n\n=== ARTICLE ===\nTitre: B\nContenu:\nbody")
		Expect(skipped).To(BeEmpty())
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal("code_2"))
	})

	It("skips articles whose content is empty", func() {
		records, skipped := corpus.ParseDocument("code", "=== ARTICLE ===\nTitre: Vide\nContenu:\n   \n=== ARTICLE ===\nTitre: Plein\nContenu:\ntexte")
		Expect(skipped).To(Equal([]string{"code_1"}))
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal("code_2"))
	})

	It("turns an undelimited file into one record titled after the file", func() {
		records, skipped := corpus.ParseDocument("code_du_travail", "  Texte intégral.\n")
		Expect(skipped).To(BeEmpty())
		Expect(records).To(Equal([]corpus.Record{{
			ID:      "code_du_travail",
			Title:   "Code Du Travail",
			Content: "Texte intégral.",
		}}))
	})
})

var _ = Describe("Loader", func() {
	var loader *corpus.Loader

	BeforeEach(func() {
		loader = corpus.NewLoader(corpus.WithLogger(logger.Nop()))
	})

	It("yields exactly two records for one file with two articles", func() {
		fsys := fstest.MapFS{
			"texts/code.txt": {Data: []byte(twoArticles)},
		}

		catalog, report := loader.LoadFS(fsys)
		Expect(catalog.Len()).To(Equal(2))
		Expect(report.Fallback).To(BeFalse())
		Expect(report.Files).To(Equal(1))

		ids := []string{catalog.Records()[0].ID, catalog.Records()[1].ID}
		Expect(ids).To(Equal([]string{"code_1", "code_2"}))
	})

	It("only reads .txt files under texts/", func() {
		fsys := fstest.MapFS{
			"texts/code.txt":  {Data: []byte("Texte A")},
			"texts/notes.md":  {Data: []byte("ignored")},
			"other/autre.txt": {Data: []byte("ignored")},
		}

		catalog, _ := loader.LoadFS(fsys)
		Expect(catalog.Len()).To(Equal(1))
		_, ok := catalog.Get("code")
		Expect(ok).To(BeTrue())
	})

	It("applies last-write-wins across files in name order", func() {
		fsys := fstest.MapFS{
			"texts/x.txt":   {Data: []byte("=== ARTICLE ===\nTitre: Premier\nContenu:\nv1")},
			"texts/x_1.txt": {Data: []byte("v2")},
		}

		catalog, _ := loader.LoadFS(fsys)
		Expect(catalog.Len()).To(Equal(1))
		r, _ := catalog.Get("x_1")
		Expect(r.Content).To(Equal("v2"))
	})

	It("skips files that are not valid UTF-8 and keeps loading", func() {
		fsys := fstest.MapFS{
			"texts/a_bad.txt":  {Data: []byte{0xff, 0xfe, 0xfd}},
			"texts/b_good.txt": {Data: []byte("Texte valide")},
		}

		catalog, report := loader.LoadFS(fsys)
		Expect(report.SkippedFiles).To(Equal(1))
		Expect(catalog.Len()).To(Equal(1))
		_, ok := catalog.Get("b_good")
		Expect(ok).To(BeTrue())
	})

	It("falls back to the built-in records when texts/ is missing", func() {
		var buf bytes.Buffer
		loader = corpus.NewLoader(corpus.WithLogger(logger.New(logger.WithWriter(&buf))))

		catalog, report := loader.LoadFS(fstest.MapFS{})
		Expect(report.Fallback).To(BeTrue())
		Expect(catalog.Len()).To(Equal(6))
		Expect(buf.String()).To(ContainSubstring("corpus texts directory not found"))

		ids := make([]string, 0, catalog.Len())
		for _, r := range catalog.Records() {
			ids = append(ids, r.ID)
			Expect(r.Content).NotTo(BeEmpty())
		}
		Expect(ids).To(Equal([]string{"contrat", "démission", "licenciement", "salaire", "congés", "rgpd"}))
	})

	It("falls back when every file fails", func() {
		fsys := fstest.MapFS{
			"texts/empty.txt": {Data: []byte("   ")},
		}

		catalog, report := loader.LoadFS(fsys)
		Expect(report.Fallback).To(BeTrue())
		Expect(catalog.Len()).To(Equal(len(corpus.Builtin())))
	})

	It("loads from a directory on disk", func() {
		dir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, "texts"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "texts", "code.txt"), []byte(twoArticles), 0o600)).To(Succeed())

		catalog, report := loader.Load(dir)
		Expect(report.Fallback).To(BeFalse())
		Expect(report.Records).To(Equal(2))
		Expect(catalog.Len()).To(Equal(2))
	})

	It("does not fail on a missing directory", func() {
		catalog, report := loader.Load(filepath.Join(GinkgoT().TempDir(), "nope"))
		Expect(report.Fallback).To(BeTrue())
		Expect(catalog.Len()).To(Equal(6))
	})
})

var _ = Describe("TitleCase", func() {
	DescribeTable("capitalizes each word",
		func(in, want string) {
			Expect(corpus.TitleCase(in)).To(Equal(want))
		},
		Entry("simple words", "code du travail", "Code Du Travail"),
		Entry("mixed case", "cONTRAT de TRAVAIL", "Contrat De Travail"),
		Entry("accented letters", "été démission", "Été Démission"),
		Entry("apostrophes start a new word", "l'employeur", "L'Employeur"),
		Entry("digits start a new word", "article 1er", "Article 1Er"),
		Entry("empty", "", ""),
	)
})
