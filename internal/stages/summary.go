package stages

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/llm"
	"github.com/docsift/docsift/internal/registry"
)

const summarySystemPrompt = "You summarize extracted document text. Reply with a single short paragraph, no preamble."

// summaryInputCap bounds how much content is sent to the model per document.
const summaryInputCap = 8_000

// Summary asks an OpenAI-compatible model for a one-paragraph summary and
// stores it under the "summary" metadata key. It only registers when an LLM
// endpoint is configured, and always as best-effort: an unreachable model
// must never fail an extraction.
type Summary struct {
	Client llm.Client
	Model  string
}

func (s *Summary) Apply(ctx context.Context, r *extract.Result, cfg extract.Config) (*extract.Result, error) {
	if s.Client == nil || s.Model == "" {
		return nil, errors.New("summary stage not configured")
	}
	content := r.Content
	if strings.TrimSpace(content) == "" {
		return r, nil
	}
	if len(content) > summaryInputCap {
		content = content[:summaryInputCap]
	}
	user := content
	if cfg.LanguageHint != "" {
		user = "Language: " + cfg.LanguageHint + "\n\n" + content
	}
	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}
	out := r.Clone()
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata["summary"] = strings.TrimSpace(resp.Choices[0].Message.Content)
	return out, nil
}

// RegisterSummary adds the summary stage after the defaults.
func RegisterSummary(reg *registry.Registry, client llm.Client, model string) error {
	return reg.RegisterStage("summary", &Summary{Client: client, Model: model}, extract.BestEffort, OrderSummary)
}
