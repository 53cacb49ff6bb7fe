package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/pkg/ai"
)

const (
	// sentimentMaxChars truncates content before prompting; sentiment does
	// not need the full text and the cap bounds cost per call
	sentimentMaxChars = 2000

	// Batch analysis runs fixed-size groups with a pause in between to keep
	// under upstream rate limits
	sentimentBatchSize  = 5
	sentimentBatchDelay = time.Second
)

// allowedEmotions is the vocabulary the model must pick from; anything else
// is treated as a validation failure
var allowedEmotions = map[string]bool{
	"happy":      true,
	"joy":        true,
	"grateful":   true,
	"excited":    true,
	"calm":       true,
	"content":    true,
	"neutral":    true,
	"hopeful":    true,
	"anxious":    true,
	"stressed":   true,
	"sad":        true,
	"angry":      true,
	"frustrated": true,
	"tired":      true,
}

// SentimentResult is a bounded sentiment reading of one entry's text
type SentimentResult struct {
	Score          float64 `json:"score"`
	Magnitude      float64 `json:"magnitude"`
	PrimaryEmotion string  `json:"primary_emotion"`
	Confidence     float64 `json:"confidence"`
}

// neutralSentiment is the fallback returned whenever analysis cannot complete
func neutralSentiment() SentimentResult {
	return SentimentResult{Score: 0, Magnitude: 0, PrimaryEmotion: "neutral", Confidence: 0}
}

// sentimentOutcome separates "genuinely neutral" from "analysis failed" so the
// worker and tests can tell them apart; the neutral collapse happens only at
// the public boundary.
type sentimentOutcome struct {
	Result   SentimentResult
	FellBack bool
	Reason   string
}

// SentimentAnalyzer turns entry text into a bounded sentiment result. It
// treats the LLM as an untrusted producer: every field is range-checked
// before the result is accepted.
type SentimentAnalyzer struct {
	client  ai.Client
	tracker *UsageTracker
	model   string
	sleep   func(time.Duration)
	now     func() time.Time
}

// NewSentimentAnalyzer creates a new SentimentAnalyzer
func NewSentimentAnalyzer(client ai.Client, tracker *UsageTracker, model string) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		client:  client,
		tracker: tracker,
		model:   model,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Analyze scores one entry's text. It never returns an error: sentiment is an
// enhancement, not a critical path, so every failure collapses to the neutral
// fallback.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, userID, content string) SentimentResult {
	outcome := a.analyze(ctx, userID, content)
	if outcome.FellBack {
		log.Printf("[Sentiment] Fallback to neutral for user %s: %s", userID, outcome.Reason)
	}
	return outcome.Result
}

func (a *SentimentAnalyzer) analyze(ctx context.Context, userID, content string) sentimentOutcome {
	if content == "" {
		return fallback("empty content")
	}
	if !a.client.Available() {
		return fallback("LLM not configured")
	}
	if !a.tracker.CheckRateLimit(userID, journaldomain.OperationSentiment) {
		return fallback("rate limit reached")
	}

	content = truncateForPrompt(content, sentimentMaxChars)

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: sentimentSystemPrompt},
		{Role: ai.RoleUser, Content: content},
	}

	completion, err := a.client.Complete(ctx, messages, ai.Options{
		Model:       a.model,
		Temperature: 0.2,
		MaxTokens:   150,
	})
	if err != nil {
		return fallback("completion failed: " + err.Error())
	}

	result, err := parseSentimentJSON(completion.Text)
	if err != nil {
		return fallback(err.Error())
	}

	// Best-effort accounting; only successful analyses cost tokens worth recording
	a.tracker.Track(userID, journaldomain.OperationSentiment, a.model, completion.TotalTokens())

	return sentimentOutcome{Result: result}
}

// AnalyzeBatch scores entries in groups of five with a pause between groups.
// Each entry's result is collected independently, so one failure never aborts
// the rest. Results are index-aligned with entries.
func (a *SentimentAnalyzer) AnalyzeBatch(ctx context.Context, userID string, entries []*journaldomain.JournalEntry) []SentimentResult {
	results := make([]SentimentResult, len(entries))

	for start := 0; start < len(entries); start += sentimentBatchSize {
		end := start + sentimentBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = a.Analyze(ctx, userID, entries[i].Content)
			}(i)
		}
		wg.Wait()

		if end < len(entries) {
			a.sleep(sentimentBatchDelay)
		}
	}
	return results
}

const sentimentSystemPrompt = `You are a sentiment analysis engine for personal journal entries.
Analyze the emotional content of the user's text and respond with STRICT JSON only, no markdown fences, no extra text:
{"score": <float -1 to 1, negative to positive valence>, "magnitude": <float 0 to 1, emotional intensity>, "primary_emotion": <one of: happy, joy, grateful, excited, calm, content, neutral, hopeful, anxious, stressed, sad, angry, frustrated, tired>, "confidence": <float 0 to 1>}`

// parseSentimentJSON validates untrusted model output field by field. Pointer
// fields catch missing keys, which plain zero values would hide.
func parseSentimentJSON(raw string) (SentimentResult, error) {
	var parsed struct {
		Score          *float64 `json:"score"`
		Magnitude      *float64 `json:"magnitude"`
		PrimaryEmotion *string  `json:"primary_emotion"`
		Confidence     *float64 `json:"confidence"`
	}

	cleaned := ai.ExtractJSONObject(raw)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return SentimentResult{}, fmt.Errorf("invalid sentiment JSON: %w", err)
	}

	if parsed.Score == nil || parsed.Magnitude == nil || parsed.PrimaryEmotion == nil || parsed.Confidence == nil {
		return SentimentResult{}, fmt.Errorf("sentiment JSON missing required fields")
	}
	if *parsed.Score < -1 || *parsed.Score > 1 {
		return SentimentResult{}, fmt.Errorf("sentiment score %f out of range", *parsed.Score)
	}
	if *parsed.Magnitude < 0 || *parsed.Magnitude > 1 {
		return SentimentResult{}, fmt.Errorf("sentiment magnitude %f out of range", *parsed.Magnitude)
	}
	if *parsed.Confidence < 0 || *parsed.Confidence > 1 {
		return SentimentResult{}, fmt.Errorf("sentiment confidence %f out of range", *parsed.Confidence)
	}
	if !allowedEmotions[*parsed.PrimaryEmotion] {
		return SentimentResult{}, fmt.Errorf("unknown primary emotion %q", *parsed.PrimaryEmotion)
	}

	return SentimentResult{
		Score:          *parsed.Score,
		Magnitude:      *parsed.Magnitude,
		PrimaryEmotion: *parsed.PrimaryEmotion,
		Confidence:     *parsed.Confidence,
	}, nil
}

func fallback(reason string) sentimentOutcome {
	return sentimentOutcome{Result: neutralSentiment(), FellBack: true, Reason: reason}
}

// truncateForPrompt cuts s to at most max bytes without splitting a UTF-8
// rune, so truncated prompts never end in a mangled character
func truncateForPrompt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
