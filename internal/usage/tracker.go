package usage

import (
	"sync"

	"NewsBrief/internal/domain"
)

// Pricing is the provider price in USD per 1000 tokens.
type Pricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

// Cost converts token usage into USD.
func (p Pricing) Cost(u domain.TokenUsage) float64 {
	return float64(u.PromptTokens)/1000*p.PromptPer1K + float64(u.CompletionTokens)/1000*p.CompletionPer1K
}

// Tracker accumulates usage across the model calls of one run. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	pricing Pricing
	report  domain.UsageReport
}

// NewTracker starts an empty accumulator.
func NewTracker(pricing Pricing) *Tracker {
	return &Tracker{pricing: pricing}
}

// Record adds one model call.
func (t *Tracker) Record(u domain.TokenUsage) {
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.PromptTokens += u.PromptTokens
	t.report.CompletionTokens += u.CompletionTokens
	t.report.TotalTokens += total
	t.report.TotalCost += t.pricing.Cost(u)
	t.report.RequestCount++
}

// Report returns a snapshot of the accumulated usage.
func (t *Tracker) Report() domain.UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}
