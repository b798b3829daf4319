package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

const (
	askToolName    = "ask"
	askDescription = "Answer a question about French labour law from the loaded Code du travail articles. " +
		"Returns a Markdown answer quoting the relevant articles."

	retrieveToolName    = "retrieve"
	retrieveDescription = "List the Code du travail articles most relevant to a question, with their scores, without composing an answer."

	historyToolName    = "history"
	historyDescription = "Return the most recent questions and answers, oldest first."

	defaultHistoryLimit = 10
)

type AskInput struct {
	Question string `json:"question" jsonschema:"the question, in French"`
}

type AskOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question, in French"`
}

type RetrieveOutput struct {
	Question string      `json:"question"`
	Sources  []qa.Source `json:"sources"`
	Count    int         `json:"count"`
}

type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of entries to return (default: 10)"`
}

// HistoryEntry is a history.Entry with a preformatted timestamp.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type HistoryOutput struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// toolResult serializes output into a text block alongside the structured
// content, for clients that only read text.
func toolResult[T any](output T) (*mcp.CallToolResult, T, error) {
	raw, err := json.Marshal(output)
	if err != nil {
		var zero T
		return toolError("Failed to serialize results: %v", err), zero, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, output, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	q, err := qa.ValidateQuestion(input.Question)
	if err != nil {
		return toolError("Veuillez poser une question"), AskOutput{}, nil
	}

	s.config.Logger.Debug("MCP ask request", "question", q)

	ans, err := s.config.Service.Ask(ctx, q)
	if err != nil {
		s.config.Logger.Error("MCP ask failed", "error", err)
		return toolError("Erreur lors du traitement: %v", err), AskOutput{}, nil
	}

	return toolResult(AskOutput{Question: q, Answer: ans})
}

func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (*mcp.CallToolResult, RetrieveOutput, error) {
	q, err := qa.ValidateQuestion(input.Question)
	if err != nil {
		return toolError("Veuillez poser une question"), RetrieveOutput{}, nil
	}

	sources, err := s.config.Service.Retrieve(ctx, q)
	if err != nil {
		s.config.Logger.Error("MCP retrieve failed", "error", err)
		return toolError("Erreur lors du traitement: %v", err), RetrieveOutput{}, nil
	}
	if sources == nil {
		sources = []qa.Source{}
	}

	return toolResult(RetrieveOutput{Question: q, Sources: sources, Count: len(sources)})
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.config.Service.History(ctx, limit)
	if err != nil {
		s.config.Logger.Error("MCP history failed", "error", err)
		return toolError("Erreur lors de la lecture de l'historique: %v", err), HistoryOutput{}, nil
	}

	return toolResult(buildHistoryOutput(entries))
}

func buildHistoryOutput(entries []*history.Entry) HistoryOutput {
	out := HistoryOutput{Entries: make([]HistoryEntry, len(entries)), Count: len(entries)}
	for i, e := range entries {
		out.Entries[i] = HistoryEntry{
			ID:        e.ID,
			Question:  e.Question,
			Answer:    e.Answer,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		}
	}
	return out
}
