package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

const defaultOpenAIModel = openai.GPT4oMini

// systemInstruction mirrors the contract enforced by quiz.Validate.
const systemInstruction = `You are a quiz generator. You will be given a topic and a difficulty level from 1 to 5, where 5 is the most difficult.
Generate a multiple-choice quiz on the topic.
For difficulty levels 1 to 3, generate 10 questions. For difficulty level 4, generate 15 questions. For difficulty level 5, generate 20 questions.
Each question must be clearly phrased and relevant to the topic, have exactly 4 distinct answer choices, and include the correct answer copied verbatim from its choices.
Respond with a JSON object of the form {"questions": [{"question": "What is the capital of France?", "choices": ["Berlin", "Madrid", "Paris", "Rome"], "answer": "Paris"}]}.`

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIGenerator implements quiz.Generator with chat completions in JSON mode.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

var _ quiz.Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(cfg OpenAIConfig, logger zerolog.Logger) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = newHTTPClient(timeout)

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger.With().Str("component", "openai_generator").Str("model", model).Logger(),
	}
}

// Generate asks the model for a quiz and returns the question array it produced.
func (g *OpenAIGenerator) Generate(ctx context.Context, req quiz.Request) ([]byte, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", quiz.ErrNetworkFailure, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &quiz.ContractViolationError{Problems: []string{"model returned no choices"}}
	}

	content := resp.Choices[0].Message.Content
	g.logger.Debug().
		Str("topic", req.Topic).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("completion received")

	return unwrapQuestions([]byte(content)), nil
}

func userPrompt(req quiz.Request) string {
	return fmt.Sprintf(
		"Generate a list of %d questions of level %d on the topic of %s for a quiz. The questions should be multiple choice and include the correct answer.",
		req.ExpectedCount, req.Level, req.Topic,
	)
}
