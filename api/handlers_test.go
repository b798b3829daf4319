package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/corpus"
	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
	"github.com/papercomputeco/legalqa/pkg/lexical"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
	testutils "github.com/papercomputeco/legalqa/pkg/utils/test"
)

func newTestServer(svc *qa.Service, cfg Config) *Server {
	server, err := NewServer(cfg, svc, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return server
}

func do(server *Server, method, target, body string) (*http.Response, []byte) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	Expect(err).NotTo(HaveOccurred())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())
	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, raw
}

func decode[T any](raw []byte) T {
	var out T
	Expect(json.Unmarshal(raw, &out)).To(Succeed())
	return out
}

var _ = Describe("Server", func() {
	var (
		svc    *qa.Service
		server *Server
	)

	BeforeEach(func() {
		var err error
		svc, err = qa.New(
			qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)),
			qa.WithHistory(inmemory.NewDriver()),
		)
		Expect(err).NotTo(HaveOccurred())
		server = newTestServer(svc, Config{ListenAddr: ":0"})
	})

	Describe("GET /ping", func() {
		It("answers pong", func() {
			resp, raw := do(server, http.MethodGet, "/ping", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(raw)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /api/health", func() {
		It("reports readiness", func() {
			resp, raw := do(server, http.MethodGet, "/api/health", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[map[string]any](raw)
			Expect(got).To(HaveKeyWithValue("status", "ok"))
			Expect(got).To(HaveKeyWithValue("rag_ready", true))
			Expect(got).To(HaveKeyWithValue("llm_available", true))
			Expect(got).To(HaveKeyWithValue("engine", "lexical"))
			Expect(got).To(HaveKeyWithValue("records", BeNumerically("==", 6)))
		})

		It("reports not ready without a service", func() {
			bare := newTestServer(nil, Config{})
			_, raw := do(bare, http.MethodGet, "/api/health", "")
			Expect(decode[map[string]any](raw)).To(HaveKeyWithValue("rag_ready", false))
		})
	})

	Describe("POST /api/ask", func() {
		It("answers with sources and a source line", func() {
			resp, raw := do(server, http.MethodPost, "/api/ask", `{"question":"  Quel est le salaire minimum ?  "}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[AskResponse](raw)
			Expect(got.Success).To(BeTrue())
			Expect(got.Question).To(Equal("Quel est le salaire minimum ?"))
			Expect(got.SourceCount).To(Equal(len(got.Sources)))
			Expect(got.Sources).NotTo(BeEmpty())
			Expect(len(got.Sources)).To(BeNumerically("<=", 5))

			top := got.Sources[0]
			Expect(top.ID).To(Equal(1))
			Expect(top.Name).To(Equal("Code du travail - Salaire"))
			Expect(top.Excerpt).To(ContainSubstring("SMIC (Salaire Minimum Interprofessionnel de Croissance)"))
			Expect(top.Relevance).To(Equal("Haut"))
			Expect(got.Answer).To(HaveSuffix(")"))
			Expect(got.Answer).To(ContainSubstring("\n\n(Source: Code du travail - Salaire"))
		})

		It("records the exchange", func() {
			do(server, http.MethodPost, "/api/ask", `{"question":"démission préavis"}`)
			entries, err := svc.History(context.Background(), 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("rejects blank questions", func() {
			resp, raw := do(server, http.MethodPost, "/api/ask", `{"question":"   "}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(decode[ErrorResponse](raw)).To(Equal(ErrorResponse{Error: "Veuillez poser une question"}))
		})

		It("rejects malformed bodies", func() {
			resp, _ := do(server, http.MethodPost, "/api/ask", `{"question":`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("answers 503 without a service", func() {
			bare := newTestServer(nil, Config{})
			resp, raw := do(bare, http.MethodPost, "/api/ask", `{"question":"salaire"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
			Expect(decode[ErrorResponse](raw).Error).To(Equal("Système RAG non initialisé"))
		})

		It("answers 500 with the failure message on internal errors", func() {
			failing, err := qa.New(
				qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)),
				qa.WithEngine(&testutils.MockEngine{Err: errors.New("index corrupted")}),
			)
			Expect(err).NotTo(HaveOccurred())

			resp, raw := do(newTestServer(failing, Config{}), http.MethodPost, "/api/ask", `{"question":"salaire"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
			Expect(decode[ErrorResponse](raw).Error).To(Equal("Erreur lors du traitement: index corrupted"))
		})

		It("records nothing when listing sources fails", func() {
			store := inmemory.NewDriver()
			failing, err := qa.New(
				qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)),
				qa.WithEngine(&testutils.MockEngine{
					Results:    []lexical.Result{{RecordID: "salaire", Source: "Code du travail - Salaire", Score: 0.5}},
					LimitedErr: errors.New("source lookup failed"),
				}),
				qa.WithHistory(store),
			)
			Expect(err).NotTo(HaveOccurred())

			resp, _ := do(newTestServer(failing, Config{}), http.MethodPost, "/api/ask", `{"question":"salaire"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))

			count, err := store.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
		})

		It("labels weaker sources as medium relevance", func() {
			mock := &testutils.MockEngine{Results: []lexical.Result{
				{RecordID: "a", Source: "Code du travail - A", Score: 0.5},
				{RecordID: "b", Source: "Code du travail - A", Score: 0.12},
			}}
			withMock, err := qa.New(qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)), qa.WithEngine(mock))
			Expect(err).NotTo(HaveOccurred())

			_, raw := do(newTestServer(withMock, Config{}), http.MethodPost, "/api/ask", `{"question":"q"}`)
			got := decode[AskResponse](raw)
			Expect(got.Sources[0].Relevance).To(Equal("Haut"))
			Expect(got.Sources[1].Relevance).To(Equal("Moyen"))
			Expect(got.Answer).To(HaveSuffix("\n\n(Source: Code du travail - A)"))
		})
	})

	Describe("GET /api/retrieve", func() {
		It("lists sources", func() {
			resp, raw := do(server, http.MethodGet, "/api/retrieve?question=salaire%20minimum", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[RetrieveResponse](raw)
			Expect(got.Success).To(BeTrue())
			Expect(got.Sources[0].RecordID).To(Equal("salaire"))
		})

		It("requires a question", func() {
			resp, _ := do(server, http.MethodGet, "/api/retrieve", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("turns panics into a generic 500", func() {
			panicking, err := qa.New(
				qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)),
				qa.WithEngine(&testutils.MockEngine{Panic: "boom"}),
			)
			Expect(err).NotTo(HaveOccurred())

			resp, raw := do(newTestServer(panicking, Config{}), http.MethodGet, "/api/retrieve?question=x", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
			Expect(decode[ErrorResponse](raw)).To(Equal(ErrorResponse{Error: "Erreur serveur interne"}))
		})
	})

	Describe("GET /api/history", func() {
		It("returns truncated answers oldest first", func() {
			do(server, http.MethodPost, "/api/ask", `{"question":"salaire minimum"}`)
			do(server, http.MethodPost, "/api/ask", `{"question":"congés payés"}`)

			previewing := newTestServer(svc, Config{PreviewChars: 20})
			resp, raw := do(previewing, http.MethodGet, "/api/history?limit=10", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[HistoryResponse](raw)
			Expect(got.Success).To(BeTrue())
			Expect(got.Count).To(Equal(2))
			Expect(got.History[0].ID).To(Equal(int64(1)))
			Expect(got.History[0].Question).To(Equal("salaire minimum"))
			Expect([]rune(got.History[0].Answer)).To(HaveLen(20))
			Expect(got.History[1].Timestamp).NotTo(BeEmpty())
		})

		It("honours the limit", func() {
			for range 3 {
				do(server, http.MethodPost, "/api/ask", `{"question":"salaire"}`)
			}
			_, raw := do(server, http.MethodGet, "/api/history?limit=2", "")
			got := decode[HistoryResponse](raw)
			Expect(got.Count).To(Equal(2))
			Expect(got.History[0].ID).To(Equal(int64(2)))
		})

		DescribeTable("rejects bad limits",
			func(limit string) {
				resp, _ := do(server, http.MethodGet, "/api/history?limit="+limit, "")
				Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			},
			Entry("zero", "0"),
			Entry("negative", "-3"),
			Entry("text", "abc"),
		)
	})

	Describe("POST /api/clear-history", func() {
		It("clears history", func() {
			do(server, http.MethodPost, "/api/ask", `{"question":"salaire"}`)

			resp, raw := do(server, http.MethodPost, "/api/clear-history", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(decode[MessageResponse](raw)).To(Equal(MessageResponse{Success: true, Message: "Historique effacé"}))

			_, raw = do(server, http.MethodGet, "/api/history", "")
			Expect(decode[HistoryResponse](raw).History).To(BeEmpty())
		})

		It("answers 503 without a service", func() {
			resp, _ := do(newTestServer(nil, Config{}), http.MethodPost, "/api/clear-history", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
		})
	})

	Describe("unknown routes", func() {
		It("answer a JSON 404", func() {
			resp, raw := do(server, http.MethodGet, "/api/nope", "")
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(decode[ErrorResponse](raw)).To(Equal(ErrorResponse{Error: "Endpoint non trouve"}))
		})
	})

	Describe("CORS", func() {
		It("allows any origin", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Origin", "http://localhost:3000")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})
})

var _ = Describe("Static frontend", func() {
	It("serves files from the static dir and keeps the JSON 404", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Assistant juridique</h1>"), 0o644)).To(Succeed())

		svc, err := qa.New(qa.WithCatalog(corpus.NewCatalog(corpus.Builtin()...)))
		Expect(err).NotTo(HaveOccurred())
		server := newTestServer(svc, Config{StaticDir: dir, MCPDisabled: true})

		resp, raw := do(server, http.MethodGet, "/", "")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(string(raw)).To(ContainSubstring("Assistant juridique"))

		resp, _ = do(server, http.MethodGet, "/missing.js", "")
		Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
	})
})
