// Package mlclass implements the trainable text classifier: a TF-IDF naive
// Bayes model over normalized transaction descriptions, used as the fallback
// stage after rule and fuzzy matching and as the source of posterior
// confidence and token-level explanations.
package mlclass

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/jbrukh/bayesian"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/model"
	"github.com/spendsage/spendsage/internal/normalize"
)

// Training defaults. The seed fixes the stratified shuffle so training runs
// are reproducible.
const (
	DefaultTestFraction = 0.2
	TopTokenCount       = 5
	trainSeed           = 42
)

// FallbackCategory labels transactions whose ground truth is missing.
const FallbackCategory = "Others"

// Model is a fitted classifier plus the vocabulary and label set observed at
// training time. It is immutable after Train; callers install a new Model
// atomically rather than mutating one in place.
type Model struct {
	classifier  *bayesian.Classifier
	vocab       map[string]struct{}
	classTokens map[string]map[string]int
	labels      []string
}

// Prediction is the classifier's answer for one description.
type Prediction struct {
	Category   string
	TopTokens  []string
	Confidence float64
}

// Labels returns the sorted label vocabulary the model was trained with.
func (m *Model) Labels() []string {
	return m.labels
}

// Train fits a TF-IDF naive Bayes model on labeled transactions using a
// stratified holdout split. Transactions without a category are labeled
// FallbackCategory. It requires at least two distinct labels, each with at
// least two samples, and reports holdout accuracy.
func Train(txns []model.Transaction, testFraction float64) (*Model, model.TrainingMetrics, error) {
	var metrics model.TrainingMetrics

	if testFraction <= 0 || testFraction >= 1 {
		testFraction = DefaultTestFraction
	}
	if len(txns) == 0 {
		return nil, metrics, common.ErrNoTransactions
	}

	docs := make([][]string, len(txns))
	labels := make([]string, len(txns))
	byLabel := make(map[string][]int)
	for i, txn := range txns {
		docs[i] = Tokenize(normalize.Description(txn.Description))
		label := txn.Category
		if label == "" {
			label = FallbackCategory
		}
		labels[i] = label
		byLabel[label] = append(byLabel[label], i)
	}

	if len(byLabel) < 2 {
		return nil, metrics, fmt.Errorf("%w: got %d", common.ErrTooFewClasses, len(byLabel))
	}
	for label, idxs := range byLabel {
		if len(idxs) < 2 {
			return nil, metrics, fmt.Errorf("%w: category %q has %d", common.ErrTooFewSamples, label, len(idxs))
		}
	}

	trainIdx, testIdx := stratifiedSplit(byLabel, testFraction)

	vocab := buildVocabulary(docs, trainIdx)
	for i := range docs {
		docs[i] = filterToVocab(docs[i], vocab)
	}

	labelList := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labelList = append(labelList, label)
	}
	sort.Strings(labelList)

	classes := make([]bayesian.Class, len(labelList))
	for i, label := range labelList {
		classes[i] = bayesian.Class(label)
	}

	classifier := bayesian.NewClassifierTfIdf(classes...)
	classTokens := make(map[string]map[string]int, len(labelList))
	for _, i := range trainIdx {
		classifier.Learn(docs[i], bayesian.Class(labels[i]))
		counts := classTokens[labels[i]]
		if counts == nil {
			counts = make(map[string]int)
			classTokens[labels[i]] = counts
		}
		for _, tok := range docs[i] {
			counts[tok]++
		}
	}
	classifier.ConvertTermsFreqToTfIdf()

	m := &Model{
		classifier:  classifier,
		labels:      labelList,
		vocab:       vocab,
		classTokens: classTokens,
	}

	correct := 0
	for _, i := range testIdx {
		if m.predictTokens(docs[i]).Category == labels[i] {
			correct++
		}
	}

	metrics.TrainSamples = len(trainIdx)
	metrics.TestSamples = len(testIdx)
	if len(testIdx) > 0 {
		metrics.Accuracy = float64(correct) / float64(len(testIdx))
	}

	return m, metrics, nil
}

// Predict classifies a normalized description. Confidence is the maximum
// posterior probability; TopTokens are the input's strongest features for
// the predicted class, taken from the fitted counts, not re-trained.
func (m *Model) Predict(normalized string) Prediction {
	return m.predictTokens(filterToVocab(Tokenize(normalized), m.vocab))
}

func (m *Model) predictTokens(tokens []string) Prediction {
	scores, inx, _ := m.classifier.ProbScores(tokens)

	confidence := scores[inx]
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	category := m.labels[inx]
	return Prediction{
		Category:   category,
		Confidence: confidence,
		TopTokens:  m.topTokens(tokens, category),
	}
}

// topTokens ranks the input tokens by how often they appeared in the
// predicted class during training.
func (m *Model) topTokens(tokens []string, category string) []string {
	counts := m.classTokens[category]

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		ci, cj := counts[unique[i]], counts[unique[j]]
		if ci != cj {
			return ci > cj
		}
		return unique[i] < unique[j]
	})

	if len(unique) > TopTokenCount {
		unique = unique[:TopTokenCount]
	}
	return unique
}

// stratifiedSplit holds out testFraction of each label's samples, at least
// one and never all of them. The shuffle is seeded for reproducibility.
func stratifiedSplit(byLabel map[string][]int, testFraction float64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(trainSeed))

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		idxs := append([]int(nil), byLabel[label]...)
		rng.Shuffle(len(idxs), func(i, j int) { idxs[i], idxs[j] = idxs[j], idxs[i] })

		n := int(math.Round(float64(len(idxs)) * testFraction))
		if n < 1 {
			n = 1
		}
		if n >= len(idxs) {
			n = len(idxs) - 1
		}

		testIdx = append(testIdx, idxs[:n]...)
		trainIdx = append(trainIdx, idxs[n:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

// buildVocabulary keeps the maxVocabulary most frequent training tokens,
// breaking frequency ties lexicographically.
func buildVocabulary(docs [][]string, trainIdx []int) map[string]struct{} {
	freq := make(map[string]int)
	for _, i := range trainIdx {
		for _, tok := range docs[i] {
			freq[tok]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if len(tokens) > maxVocabulary {
		tokens = tokens[:maxVocabulary]
	}

	vocab := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		vocab[tok] = struct{}{}
	}
	return vocab
}

func filterToVocab(tokens []string, vocab map[string]struct{}) []string {
	kept := tokens[:0:len(tokens)]
	for _, tok := range tokens {
		if _, ok := vocab[tok]; ok {
			kept = append(kept, tok)
		}
	}
	return kept
}
