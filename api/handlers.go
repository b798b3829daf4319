package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/legalqa/pkg/answer"
	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

const (
	msgNotReady      = "Système RAG non initialisé"
	msgEmptyQuestion = "Veuillez poser une question"
	msgBadLimit      = "Le paramètre limit doit être un entier positif"
	msgCleared       = "Historique effacé"

	relevanceHigh   = "Haut"
	relevanceMedium = "Moyen"

	defaultHistoryLimit = 10
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// SourceView is one article listed under an answer. Excerpt is the full
// article content.
type SourceView struct {
	ID        int     `json:"id"`
	RecordID  string  `json:"record_id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt"`
	Score     float64 `json:"score"`
	Relevance string  `json:"relevance"`
}

type AskResponse struct {
	Success     bool         `json:"success"`
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	Sources     []SourceView `json:"sources"`
	SourceCount int          `json:"source_count"`
}

type RetrieveResponse struct {
	Success     bool         `json:"success"`
	Question    string       `json:"question"`
	Sources     []SourceView `json:"sources"`
	SourceCount int          `json:"source_count"`
}

type HistoryItem struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	History []HistoryItem `json:"history"`
	Count   int           `json:"count"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// failService maps service errors to status codes.
func (s *Server) failService(c *fiber.Ctx, prefix string, err error) error {
	if errors.Is(err, qa.ErrNotReady) {
		return fail(c, fiber.StatusServiceUnavailable, msgNotReady)
	}
	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, prefix+err.Error())
}

func (s *Server) ready() bool {
	return s.service.Health().RAGReady
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(s.service.Health())
}

// NewSourceViews numbers sources from 1 and labels each one "Haut" when its
// score is above floor, "Moyen" otherwise.
func NewSourceViews(sources []qa.Source, floor float64) []SourceView {
	views := make([]SourceView, len(sources))
	for i, src := range sources {
		relevance := relevanceMedium
		if src.Score > floor {
			relevance = relevanceHigh
		}
		views[i] = SourceView{
			ID:        i + 1,
			RecordID:  src.RecordID,
			Name:      src.Source,
			Title:     src.Title,
			Excerpt:   src.Content,
			Score:     src.Score,
			Relevance: relevance,
		}
	}
	return views
}

// WithSourceLine appends "(Source: a, b)" naming each source once.
func WithSourceLine(ans string, sources []SourceView) string {
	if len(sources) == 0 {
		return ans
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	return ans + "\n\n(Source: " + strings.Join(answer.Unique(names), ", ") + ")"
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	if !s.ready() {
		return fail(c, fiber.StatusServiceUnavailable, msgNotReady)
	}

	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, msgEmptyQuestion)
	}
	question, err := qa.ValidateQuestion(req.Question)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, msgEmptyQuestion)
	}

	// Sources first: Ask records the exchange, so nothing may fail after it.
	sources, err := s.service.Retrieve(c.UserContext(), question)
	if err != nil {
		return s.failService(c, "Erreur lors du traitement: ", err)
	}
	views := NewSourceViews(sources, s.service.RelevantFloor())

	ans, err := s.service.Ask(c.UserContext(), question)
	if err != nil {
		return s.failService(c, "Erreur lors du traitement: ", err)
	}

	return c.JSON(AskResponse{
		Success:     true,
		Question:    question,
		Answer:      WithSourceLine(ans, views),
		Sources:     views,
		SourceCount: len(views),
	})
}

func (s *Server) handleRetrieve(c *fiber.Ctx) error {
	if !s.ready() {
		return fail(c, fiber.StatusServiceUnavailable, msgNotReady)
	}

	question, err := qa.ValidateQuestion(c.Query("question"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, msgEmptyQuestion)
	}

	sources, err := s.service.Retrieve(c.UserContext(), question)
	if err != nil {
		return s.failService(c, "Erreur lors du traitement: ", err)
	}
	views := NewSourceViews(sources, s.service.RelevantFloor())

	return c.JSON(RetrieveResponse{
		Success:     true,
		Question:    question,
		Sources:     views,
		SourceCount: len(views),
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if !s.ready() {
		return fail(c, fiber.StatusServiceUnavailable, msgNotReady)
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return fail(c, fiber.StatusBadRequest, msgBadLimit)
		}
		limit = parsed
	}

	entries, err := s.service.History(c.UserContext(), limit)
	if err != nil {
		return s.failService(c, "Erreur lors de la récupération: ", err)
	}

	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		e = history.Summarize(e, s.config.PreviewChars)
		items[i] = HistoryItem{
			ID:        e.ID,
			Question:  e.Question,
			Answer:    e.Answer,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		}
	}

	return c.JSON(HistoryResponse{Success: true, History: items, Count: len(items)})
}

func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	if !s.ready() {
		return fail(c, fiber.StatusServiceUnavailable, msgNotReady)
	}

	if err := s.service.ClearHistory(c.UserContext()); err != nil {
		return s.failService(c, "Erreur lors de l'effacement: ", err)
	}
	return c.JSON(MessageResponse{Success: true, Message: msgCleared})
}
