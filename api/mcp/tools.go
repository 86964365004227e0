package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	recallToolName    = "recall"
	recallDescription = "Recall the stored conversation turns most relevant to a query. The code under review is stored under the key \"original_code\"."

	historyToolName    = "history"
	historyDescription = "List every stored conversation turn in the order it was written, starting with the code under review."

	subjectToolName    = "subject"
	subjectDescription = "Return the code currently under review, if any."
)

// RecallInput represents the input arguments for the recall tool.
type RecallInput struct {
	Query string `json:"query" jsonschema:"the text to find related turns for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of turns to return (default: 2)"`
}

// RecalledTurn is one recall result.
type RecalledTurn struct {
	Key     string  `json:"key"`
	Payload string  `json:"payload"`
	Score   float32 `json:"score"`
}

// RecallOutput represents the output of the recall tool.
type RecallOutput struct {
	Query   string         `json:"query"`
	Results []RecalledTurn `json:"results"`
	Count   int            `json:"count"`
}

// HistoryInput takes no arguments.
type HistoryInput struct{}

// StoredTurn is one entry of the history tool.
type StoredTurn struct {
	ID      uint64 `json:"id"`
	Key     string `json:"key"`
	Payload string `json:"payload"`
}

// HistoryOutput represents the output of the history tool.
type HistoryOutput struct {
	Turns []StoredTurn `json:"turns"`
	Count int          `json:"count"`
}

// SubjectInput takes no arguments.
type SubjectInput struct{}

// SubjectOutput represents the output of the subject tool.
type SubjectOutput struct {
	Code  string `json:"code"`
	Found bool   `json:"found"`
}

func (s *Server) handleRecall(ctx context.Context, _ *mcp.CallToolRequest, input RecallInput) (*mcp.CallToolResult, RecallOutput, error) {
	if input.Query == "" {
		return errorResult("query is required"), RecallOutput{}, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.config.DefaultTopK
	}

	s.config.Logger.Debug("MCP recall request", "query", input.Query, "top_k", topK)

	relevant, err := s.config.Store.QueryRelevant(ctx, input.Query, topK)
	if err != nil {
		s.config.Logger.Error("recall failed", "error", err)
		return errorResult("Recall failed: %v", err), RecallOutput{}, nil
	}

	results := make([]RecalledTurn, 0, len(relevant))
	for _, r := range relevant {
		results = append(results, RecalledTurn{Key: r.Key, Payload: r.Payload, Score: r.Score})
	}

	output := RecallOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}

	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), RecallOutput{}, nil
	}
	return res, output, nil
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, _ HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	turns, err := s.config.Store.Turns(ctx)
	if err != nil {
		s.config.Logger.Error("listing turns failed", "error", err)
		return errorResult("Listing turns failed: %v", err), HistoryOutput{}, nil
	}

	output := HistoryOutput{Turns: make([]StoredTurn, 0, len(turns))}
	for _, t := range turns {
		output.Turns = append(output.Turns, StoredTurn{ID: uint64(t.ID), Key: t.Key, Payload: t.Payload})
	}
	output.Count = len(output.Turns)

	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), HistoryOutput{}, nil
	}
	return res, output, nil
}

func (s *Server) handleSubject(ctx context.Context, _ *mcp.CallToolRequest, _ SubjectInput) (*mcp.CallToolResult, SubjectOutput, error) {
	code, ok, err := s.config.Store.Subject(ctx)
	if err != nil {
		s.config.Logger.Error("reading subject failed", "error", err)
		return errorResult("Reading subject failed: %v", err), SubjectOutput{}, nil
	}

	output := SubjectOutput{Code: code, Found: ok}

	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), SubjectOutput{}, nil
	}
	return res, output, nil
}

