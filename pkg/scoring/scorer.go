package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/retry"
)

// DefaultModel is the Claude model used for scoring
const DefaultModel = "claude-sonnet-4-5"

const maxScoreTokens = 1024

// Scorer scores a scope summary against the company roster using
// Claude
type Scorer struct {
	client   anthropic.Client
	model    anthropic.Model
	roster   Roster
	retryCfg retry.Config
	logger   *logging.Logger
}

// ScorerConfig holds Scorer construction options
type ScorerConfig struct {
	APIKey  string
	BaseURL string // optional override, e.g. a gateway
	Model   string // optional, defaults to DefaultModel
	Roster  Roster
	Logger  *logging.Logger
}

// NewScorer creates a scorer
func NewScorer(cfg ScorerConfig) *Scorer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}

	return &Scorer{
		client:   anthropic.NewClient(opts...),
		model:    anthropic.Model(model),
		roster:   cfg.Roster,
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

// Score sends the summary to the model and decodes the scorecard.
// Transient API failures (throttling, overload) are retried with
// backoff; malformed replies are not.
func (s *Scorer) Score(ctx context.Context, summary models.ScopeSummary) (*models.ScoreCard, error) {
	prompt := BuildPrompt(summary, s.roster)

	var message *anthropic.Message
	call := func() error {
		var err error
		message, err = s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     s.model,
			MaxTokens: maxScoreTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		return err
	}

	if err := call(); err != nil {
		if !retry.IsRetryable(err) {
			return nil, models.NewWorkError(models.KindScoring, err)
		}
		s.logger.Warn("Scoring call failed, retrying", map[string]interface{}{"error": err.Error()})
		if err := retry.Do(ctx, s.retryCfg, call); err != nil {
			return nil, models.NewWorkError(models.KindScoring, err)
		}
	}

	text := firstText(message)
	if text == "" {
		return nil, models.Errorf(models.KindScoreParse, "model reply has no text content")
	}

	var card models.ScoreCard
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &card); err != nil {
		return nil, models.NewWorkError(models.KindScoreParse, fmt.Errorf("failed to decode scorecard: %w", err))
	}
	if err := card.Validate(s.roster.Slugs()); err != nil {
		return nil, models.NewWorkError(models.KindScoreParse, err)
	}

	s.logger.Info("Scoring complete", map[string]interface{}{"package_score": card.PackageScore})
	return &card, nil
}

func firstText(message *anthropic.Message) string {
	if message == nil {
		return ""
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// ExtractJSON strips markdown code fences the model sometimes wraps
// its reply in, returning the bare JSON object
func ExtractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}
