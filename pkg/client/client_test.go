package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/pkg/client"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

var _ = Describe("New", func() {
	It("rejects a target without scheme or host", func() {
		_, err := client.New("localhost")
		Expect(err).To(HaveOccurred())
	})

	It("trims a trailing slash", func() {
		c, err := client.New("http://localhost:8001/")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Target()).To(Equal("http://localhost:8001"))
	})
})

var _ = Describe("Client", func() {
	var (
		ctx context.Context
		ts  *httptest.Server
		c   *client.Client
	)

	start := func(svc *qa.Service) {
		server, err := api.NewServer(api.Config{}, svc, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		ts = httptest.NewServer(server.Handler())

		c, err = client.New(ts.URL)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		ts.Close()
	})

	Context("with a ready service", func() {
		BeforeEach(func() {
			svc, err := qa.New(
				qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)),
				qa.WithHistory(inmemory.NewDriver()),
			)
			Expect(err).NotTo(HaveOccurred())
			start(svc)
		})

		It("reports health", func() {
			health, err := c.Health(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(health.RAGReady).To(BeTrue())
			Expect(health.Engine).To(Equal("lexical"))
		})

		It("asks a question and records it", func() {
			resp, err := c.Ask(ctx, "durée du congé de maternité")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Answer).NotTo(BeEmpty())

			hist, err := c.History(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hist.Count).To(Equal(1))
			Expect(hist.History[0].Question).To(Equal("durée du congé de maternité"))
		})

		It("retrieves sources without recording", func() {
			_, err := c.Retrieve(ctx, "licenciement préavis")
			Expect(err).NotTo(HaveOccurred())

			hist, err := c.History(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hist.Count).To(BeZero())
		})

		It("clears the history", func() {
			_, err := c.Ask(ctx, "salaire minimum")
			Expect(err).NotTo(HaveOccurred())

			msg, err := c.ClearHistory(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Message).To(Equal("Historique effacé"))

			hist, err := c.History(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hist.Count).To(BeZero())
		})

		It("surfaces validation errors as APIError", func() {
			_, err := c.Ask(ctx, "   ")
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(Equal("Veuillez poser une question"))
		})
	})

	Context("without a service", func() {
		BeforeEach(func() {
			start(nil)
		})

		It("returns 503", func() {
			_, err := c.Ask(ctx, "congés payés")
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
			Expect(apiErr.Message).To(Equal("Système RAG non initialisé"))
		})
	})
})
