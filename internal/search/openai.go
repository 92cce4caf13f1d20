package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

const systemPrompt = `You convert recruiter search queries into JSON filters for an applicant tracking system.
Respond with a single JSON object and nothing else, using these optional keys:
  "stage": one of SCREENING, L1, L2, DIRECTOR, HR, COMPENSATION, BG_CHECK, OFFER
  "skills": array of technology or skill names
  "position": job title fragment
  "search": free text matched against name, email and position
Omit keys the query does not mention.`

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// ErrEmptyCompletion is returned when the model produces no usable answer.
var ErrEmptyCompletion = errors.New("openai returned no choices")

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIParser asks a chat model to structure the query.
type OpenAIParser struct {
	client chatCompleter
	model  string
}

// NewOpenAIParser creates a parser bound to the given API key.
func NewOpenAIParser(apiKey, model string) *OpenAIParser {
	if model == "" {
		model = DefaultModel
	}
	slog.Info("initializing OpenAI query parser", "model", model)
	return &OpenAIParser{client: openai.NewClient(apiKey), model: model}
}

type llmCriteria struct {
	Stage    string   `json:"stage"`
	Skills   []string `json:"skills"`
	Position string   `json:"position"`
	Search   string   `json:"search"`
}

// Parse implements Parser.
func (p *OpenAIParser) Parse(ctx context.Context, query string) (Criteria, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Criteria{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Criteria{}, ErrEmptyCompletion
	}
	slog.Debug("received query parse from OpenAI", "finish_reason", resp.Choices[0].FinishReason)

	return decodeCriteria(resp.Choices[0].Message.Content)
}

// decodeCriteria parses the model output. Unknown stages are dropped rather
// than failing the whole search.
func decodeCriteria(content string) (Criteria, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw llmCriteria
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Criteria{}, fmt.Errorf("decode model output: %w", err)
	}

	c := Criteria{
		Skills:   cleanSkills(raw.Skills),
		Position: strings.TrimSpace(raw.Position),
		Search:   strings.TrimSpace(raw.Search),
	}
	if raw.Stage != "" {
		if stage, err := domain.ParseStage(raw.Stage); err == nil {
			c.Stage = &stage
		} else {
			slog.Debug("dropping unknown stage from model output", "stage", raw.Stage)
		}
	}
	return c, nil
}
