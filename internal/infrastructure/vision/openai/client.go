package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/infrastructure/resilience"
)

// Client wraps an OpenAI-compatible vision endpoint. Every call goes through
// the shared rate limiter and the resilience executor; retries and breaker
// state live here, below the stage boundary — the pipeline itself never
// re-runs a stage.
type Client struct {
	api      *openai.Client
	model    string
	limiter  *rate.Limiter
	executor *resilience.Executor
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func New(cfg Config, executor *resilience.Executor) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 2
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 2
	}

	return &Client{
		api:      openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		executor: executor,
	}
}

// Classifier implements ports.DocumentClassifier against the vision model.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify sends the image with the fixed classification instruction and maps
// the reply onto the closed label set. The mapping is total; only transport
// or service failures surface as errors.
func (c *Classifier) Classify(ctx context.Context, imageJPEG []byte) (domain.DocumentType, error) {
	reply, err := c.client.complete(ctx, "classify", classificationInstruction(), imageJPEG)
	if err != nil {
		return domain.TypeUnknown, err
	}
	return domain.ParseDocumentType(reply), nil
}

// Extractor implements ports.FieldExtractor against the vision model.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// Extract sends the image with the type-specific instruction and returns the
// raw reply untouched; parsing is the caller's concern.
func (e *Extractor) Extract(ctx context.Context, imageJPEG []byte, docType domain.DocumentType) (string, error) {
	return e.client.complete(ctx, "extract", extractionInstruction(docType), imageJPEG)
}

func (c *Client) complete(ctx context.Context, operation, instruction string, imageJPEG []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("vision %s rate wait: %w", operation, err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    jpegDataURL(imageJPEG),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: 0,
	}

	var reply string
	call := func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, req)
		if err != nil {
			return fmt.Errorf("vision %s request: %w", operation, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("vision %s: empty choices", operation)
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision."+operation, call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("vision "+operation, err)
	}
	return reply, nil
}

func jpegDataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
