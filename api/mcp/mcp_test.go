package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/api/mcp"
	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

var _ = Describe("MCP Server", func() {
	var svc *qa.Service

	BeforeEach(func() {
		var err error
		svc, err = qa.New(qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the service is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("service is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Service: svc})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("allows an empty noop server", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			server, err := mcp.NewServer(mcp.Config{Service: svc, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
