package sentiment

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"CoinPulse/internal/domain/models"
)

var nonWord = regexp.MustCompile(`\W+`)

// trainingSet is the fixed labeled phrase set the classifier learns from.
var trainingSet = []struct {
	text  string
	label models.Sentiment
}{
	{"price increase", models.Positive},
	{"bullish market", models.Positive},
	{"new partnership", models.Positive},
	{"adoption growing", models.Positive},
	{"successful launch", models.Positive},
	{"breakthrough technology", models.Positive},
	{"record high", models.Positive},
	{"strong growth", models.Positive},

	{"price crash", models.Negative},
	{"bearish market", models.Negative},
	{"hack", models.Negative},
	{"scam", models.Negative},
	{"regulation concerns", models.Negative},
	{"market decline", models.Negative},
	{"security breach", models.Negative},
	{"volatility risk", models.Negative},
}

// Classifier is a multinomial naive Bayes model over positive and negative
// phrases with Laplace smoothing. It is safe for concurrent use once trained.
type Classifier struct {
	once sync.Once

	trained bool
	docs    map[models.Sentiment]int
	words   map[models.Sentiment]map[string]int
	totals  map[models.Sentiment]int
	vocab   map[string]struct{}
}

// NewClassifier returns a trained classifier.
func NewClassifier() *Classifier {
	c := &Classifier{}
	c.Train()
	return c
}

// Train loads the labeled phrase set. Calling it more than once is a no-op.
func (c *Classifier) Train() {
	c.once.Do(func() {
		c.docs = make(map[models.Sentiment]int)
		c.words = map[models.Sentiment]map[string]int{
			models.Positive: {},
			models.Negative: {},
		}
		c.totals = make(map[models.Sentiment]int)
		c.vocab = make(map[string]struct{})

		for _, doc := range trainingSet {
			c.docs[doc.label]++
			for _, tok := range tokenize(doc.text) {
				c.words[doc.label][tok]++
				c.totals[doc.label]++
				c.vocab[tok] = struct{}{}
			}
		}
		c.trained = true
	})
}

// Classify returns a label and a score in [-1,1] equal to P(pos|text)-P(neg|text).
// Empty text, or text without a single known token, is neutral with score 0.
func (c *Classifier) Classify(text string) (models.Sentiment, float64, error) {
	if c == nil || !c.trained {
		return models.Neutral, 0, models.ErrNotTrained
	}

	var known []string
	for _, tok := range tokenize(text) {
		if _, ok := c.vocab[tok]; ok {
			known = append(known, tok)
		}
	}
	if len(known) == 0 {
		return models.Neutral, 0, nil
	}

	total := c.docs[models.Positive] + c.docs[models.Negative]
	v := float64(len(c.vocab))
	logPos := math.Log(float64(c.docs[models.Positive]) / float64(total))
	logNeg := math.Log(float64(c.docs[models.Negative]) / float64(total))
	for _, tok := range known {
		logPos += math.Log((float64(c.words[models.Positive][tok]) + 1) / (float64(c.totals[models.Positive]) + v))
		logNeg += math.Log((float64(c.words[models.Negative][tok]) + 1) / (float64(c.totals[models.Negative]) + v))
	}

	// softmax over two classes
	m := math.Max(logPos, logNeg)
	pPos := math.Exp(logPos - m)
	pNeg := math.Exp(logNeg - m)
	score := (pPos - pNeg) / (pPos + pNeg)

	return models.LabelFor(score), score, nil
}

func tokenize(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
