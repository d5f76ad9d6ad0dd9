// Package coach answers chat messages with an LLM completion grounded on
// retrieved passages.
package coach

import (
	"context"
	"fmt"
	"strings"

	"ecocoach/internal/apperror"
	"ecocoach/pkg/logger"

	"go.uber.org/zap"
)

const (
	passageCount     = 3
	maxMessageLength = 2000
)

type Passage struct {
	Source string
	Text   string
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

type Reply struct {
	Text        string
	CarbonSaved float64
}

type Coach struct {
	completer Completer
	retriever Retriever
}

func New(completer Completer, retriever Retriever) *Coach {
	return &Coach{
		completer: completer,
		retriever: retriever,
	}
}

func (c *Coach) Reply(ctx context.Context, username, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.InvalidInput(apperror.CodeInvalidInput, "message", "message is required")
	}
	if len(message) > maxMessageLength {
		return nil, apperror.InvalidInput(apperror.CodeInvalidInput, "message", "message is too long")
	}

	var passages []Passage
	if c.retriever != nil {
		found, err := c.retriever.Retrieve(ctx, message, passageCount)
		if err != nil {
			// A reply without context is still useful.
			logger.Logger().Warn("retrieval failed", zap.String("username", username), zap.Error(err))
		} else {
			passages = found
		}
	}

	text, err := c.completer.Complete(ctx, buildPrompt(message, passages))
	if err != nil {
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	return &Reply{
		Text:        strings.TrimSpace(text),
		CarbonSaved: EstimateCarbon(message),
	}, nil
}

func buildPrompt(message string, passages []Passage) string {
	var b strings.Builder
	b.WriteString("You are a sustainability coach.\n")
	b.WriteString("Use this knowledge to help the user.\n\n")
	b.WriteString("Knowledge:\n")
	for _, p := range passages {
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nUser: ")
	b.WriteString(message)
	b.WriteString("\n")
	return b.String()
}
