// Package engine implements the classification orchestrator: it composes
// the rule engine, the fuzzy matcher and the trained classifier into a
// strictly ordered, short-circuiting pipeline per transaction.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/fuzzy"
	"github.com/spendsage/spendsage/internal/mlclass"
	"github.com/spendsage/spendsage/internal/model"
	"github.com/spendsage/spendsage/internal/normalize"
	"github.com/spendsage/spendsage/internal/rules"
)

// Confidence thresholds for the pipeline stages.
const (
	// RuleConfidenceThreshold resolves a rule match immediately; below it
	// the match is kept as a candidate and fuzzy matching still runs.
	RuleConfidenceThreshold = 0.80
	// LowConfidenceThreshold is the point below which ML predictions are
	// logged for human review. They are still returned, not rejected.
	LowConfidenceThreshold = 0.60
	// defaultConfidence is assigned to the Others fallback.
	defaultConfidence = 0.5
)

// ReviewSink accepts append-only review-queue entries. Implementations must
// be safe for concurrent use.
type ReviewSink interface {
	Log(ctx context.Context, entry model.ReviewEntry) error
}

// state is the immutable bundle of rule table, fuzzy corpus and trained
// model. Retraining or loading a persisted model installs a fresh state
// atomically, so in-flight classifications always see a consistent view.
type state struct {
	table   *rules.Table
	matcher *fuzzy.Matcher
	mdl     *mlclass.Model
}

// Engine orchestrates classification.
type Engine struct {
	sink          ReviewSink
	state         atomic.Pointer[state]
	lowConfidence float64
}

// Config holds orchestrator options.
type Config struct {
	LowConfidenceThreshold float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{LowConfidenceThreshold: LowConfidenceThreshold}
}

// New creates an engine over the given rule table. The sink receives
// low-confidence and fallback predictions; it may be nil to disable review
// logging.
func New(table *rules.Table, sink ReviewSink) *Engine {
	return NewWithConfig(table, sink, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(table *rules.Table, sink ReviewSink, cfg Config) *Engine {
	if cfg.LowConfidenceThreshold <= 0 {
		cfg.LowConfidenceThreshold = LowConfidenceThreshold
	}
	e := &Engine{
		sink:          sink,
		lowConfidence: cfg.LowConfidenceThreshold,
	}
	e.state.Store(&state{table: table, matcher: fuzzy.NewMatcher(table)})
	return e
}

// Rules returns the active rule table.
func (e *Engine) Rules() *rules.Table {
	return e.state.Load().table
}

// IsTrained reports whether a trained classifier is installed.
func (e *Engine) IsTrained() bool {
	return e.state.Load().mdl != nil
}

// Classify runs the pipeline for a single description: rule match, fuzzy
// match, trained classifier, then the Others fallback. Reasons accumulate
// one diagnostic per stage that produced a candidate, so the decision path
// can be audited.
func (e *Engine) Classify(ctx context.Context, description string, amount float64) model.ClassificationResult {
	st := e.state.Load()
	norm := normalize.Description(description)

	var reasons []string

	if rule := st.table.Match(norm); rule != nil {
		reasons = append(reasons,
			fmt.Sprintf("rule_merchant_match: %s", strings.Join(rule.MatchedTerms, ",")))
		if rule.Confidence >= RuleConfidenceThreshold {
			sub, _ := st.table.SubcategoryForTerms(rule.MatchedTerms)
			return model.ClassificationResult{
				Category:    rule.Category,
				Confidence:  rule.Confidence,
				Method:      model.MethodRule,
				Reasons:     reasons,
				Subcategory: sub,
			}
		}
	}

	if fz := st.matcher.Match(norm); fz != nil {
		reasons = append(reasons,
			fmt.Sprintf("fuzzy_merchant_match: %s (score=%d)", fz.Merchant, fz.Score))
		if fz.Category != "" && fz.Score >= fuzzy.ConfidentScore {
			sub, _ := st.table.SubcategoryForTerms([]string{fz.Merchant})
			return model.ClassificationResult{
				Category:    fz.Category,
				Confidence:  float64(fz.Score) / 100.0,
				Method:      model.MethodFuzzy,
				Reasons:     reasons,
				Subcategory: sub,
			}
		}
	}

	if st.mdl != nil {
		pred := st.mdl.Predict(norm)
		reasons = append(reasons,
			fmt.Sprintf("ml_top_tokens: %s", strings.Join(pred.TopTokens, ", ")))
		sub, _ := st.table.SubcategoryIn(norm)
		result := model.ClassificationResult{
			Category:    pred.Category,
			Confidence:  pred.Confidence,
			Method:      model.MethodML,
			Reasons:     reasons,
			Subcategory: sub,
		}
		if pred.Confidence < e.lowConfidence {
			e.logForReview(ctx, description, amount, result)
		}
		return result
	}

	result := model.ClassificationResult{
		Category:   mlclass.FallbackCategory,
		Confidence: defaultConfidence,
		Method:     model.MethodDefault,
		Reasons:    append(reasons, "fallback_default"),
	}
	e.logForReview(ctx, description, amount, result)
	return result
}

// ClassifyBatch classifies transactions in order; output length always
// equals input length. Correct is computed when ground truth is present.
func (e *Engine) ClassifyBatch(ctx context.Context, txns []model.Transaction) []model.BatchResult {
	results := make([]model.BatchResult, len(txns))
	for i, txn := range txns {
		res := e.Classify(ctx, txn.Description, txn.Amount)
		br := model.BatchResult{Transaction: txn, Result: res}
		if txn.Category != "" {
			correct := txn.Category == res.Category
			br.Correct = &correct
		}
		results[i] = br
	}
	return results
}

// Train fits a new classifier on labeled transactions and installs it
// atomically alongside the current rule table.
func (e *Engine) Train(_ context.Context, txns []model.Transaction, testFraction float64) (model.TrainingMetrics, error) {
	mdl, metrics, err := mlclass.Train(txns, testFraction)
	if err != nil {
		return metrics, fmt.Errorf("training failed: %w", err)
	}

	st := e.state.Load()
	e.state.Store(&state{table: st.table, matcher: st.matcher, mdl: mdl})

	slog.Info("Classifier trained",
		"accuracy", metrics.Accuracy,
		"train_samples", metrics.TrainSamples,
		"test_samples", metrics.TestSamples)
	return metrics, nil
}

// SaveModel persists the trained classifier together with the active rule
// table and subcategory map as one atomic artifact.
func (e *Engine) SaveModel(path string) error {
	st := e.state.Load()
	if st.mdl == nil {
		return common.ErrNotTrained
	}
	return mlclass.SaveArtifact(path, st.mdl, st.table)
}

// LoadModel restores a persisted artifact, swapping in the model and the
// rule table it was saved with as a single unit.
func (e *Engine) LoadModel(path string) error {
	mdl, table, err := mlclass.LoadArtifact(path)
	if err != nil {
		return err
	}

	e.state.Store(&state{table: table, matcher: fuzzy.NewMatcher(table), mdl: mdl})

	slog.Info("Model loaded", "path", path, "labels", mdl.Labels())
	return nil
}

func (e *Engine) logForReview(ctx context.Context, description string, amount float64, res model.ClassificationResult) {
	if e.sink == nil {
		return
	}

	entry := model.ReviewEntry{
		ID:                uuid.NewString(),
		LoggedAt:          time.Now().UTC(),
		Description:       description,
		Amount:            amount,
		PredictedCategory: res.Category,
		Confidence:        res.Confidence,
		Method:            res.Method,
		Reasons:           res.Reasons,
	}
	if err := e.sink.Log(ctx, entry); err != nil {
		slog.Error("Failed to log review entry", "error", err, "description", description)
	}
}
