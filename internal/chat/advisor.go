// Package chat answers free-form finance questions with Gemini, grounding
// each prompt in the caller's own transactions, assets, and goal funds.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/hyeonlab/moneyflow/backend/internal/service"
	"github.com/hyeonlab/moneyflow/backend/internal/store"
)

const (
	DefaultModel = "gemini-2.0-flash"

	promptTransactionLimit = 50
)

// Advisor generates advice over a user's finance data.
type Advisor struct {
	client  *genai.Client
	svc     *service.FinanceService
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures the advisor.
type Option func(*Advisor)

// WithModel overrides the Gemini model.
func WithModel(model string) Option {
	return func(a *Advisor) {
		if model != "" {
			a.model = model
		}
	}
}

// WithTimeout bounds a single advisory request end to end.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Advisor) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// NewAdvisor creates a Gemini-backed advisor.
func NewAdvisor(ctx context.Context, apiKey string, svc *service.FinanceService, logger zerolog.Logger, opts ...Option) (*Advisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	a := &Advisor{
		client:  client,
		svc:     svc,
		model:   DefaultModel,
		timeout: 30 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Ask builds a prompt from the user's data and queries the model, retrying
// transient failures with exponential backoff inside the request timeout.
func (a *Advisor) Ask(ctx context.Context, userID, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt, err := a.buildPrompt(ctx, userID, message)
	if err != nil {
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	var reply string
	err = backoff.Retry(func() error {
		result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
		if err != nil {
			a.logger.Warn().Err(err).Msg("generate content failed, retrying")
			return err
		}
		text, err := extractText(result)
		if err != nil {
			return backoff.Permanent(err)
		}
		reply = text
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}
	return reply, nil
}

func (a *Advisor) buildPrompt(ctx context.Context, userID, message string) (string, error) {
	assets, err := a.svc.ListAssets(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load assets: %w", err)
	}
	funds, err := a.svc.ListGoalFunds(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load goal funds: %w", err)
	}
	txs, _, err := a.svc.ListTransactions(ctx, userID, store.TransactionFilter{}, promptTransactionLimit, "")
	if err != nil {
		return "", fmt.Errorf("failed to load transactions: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a personal finance advisor. Amounts are in KRW.\n")
	sb.WriteString("Answer based only on the data below. Be concise and practical.\n\n")

	sb.WriteString("Assets:\n")
	if len(assets) == 0 {
		sb.WriteString("- none\n")
	}
	for _, asset := range assets {
		fmt.Fprintf(&sb, "- %s (%s): %d\n", asset.Name, asset.Category, asset.CurrentValue)
	}

	sb.WriteString("\nGoal funds:\n")
	if len(funds) == 0 {
		sb.WriteString("- none\n")
	}
	for _, fund := range funds {
		fmt.Fprintf(&sb, "- %s: %d of %d\n", fund.Name, fund.CurrentAmount, fund.TargetAmount)
	}

	sb.WriteString("\nRecent transactions:\n")
	if len(txs) == 0 {
		sb.WriteString("- none\n")
	}
	for _, tx := range txs {
		fmt.Fprintf(&sb, "- %s %s %s: %d (%s)\n",
			tx.OccurredAt.Format("2006-01-02"), tx.Kind, tx.Description, tx.Amount, tx.Category)
		if tx.IsRecurringTemplate {
			sb.WriteString("  (monthly fixed cost template)\n")
		}
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(message)
	return sb.String(), nil
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text, nil
}
