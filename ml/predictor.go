package ml

import (
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Predictor turns a feature vector into a win probability for fighter A.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Prediction is the pair of complementary percentages returned to clients.
type Prediction struct {
	FighterA float64 `json:"fighterA"`
	FighterB float64 `json:"fighterB"`
}

// NewPrediction converts a probability into percentages that sum to 100.
func NewPrediction(p float64) Prediction {
	return Prediction{
		FighterA: p * 100,
		FighterB: (1 - p) * 100,
	}
}

// CachedPredictor memoises an underlying deterministic Predictor.
type CachedPredictor struct {
	next  Predictor
	cache *lru.Cache[string, float64]
}

// NewCachedPredictor wraps next with an LRU of the given size. A size <= 0 returns
// next unchanged.
func NewCachedPredictor(next Predictor, size int) (Predictor, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{next: next, cache: cache}, nil
}

func (c *CachedPredictor) Predict(features []float64) (float64, error) {
	key := featureKey(features)
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}
	p, err := c.next.Predict(features)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, p)
	return p, nil
}

// Len reports the number of cached entries.
func (c *CachedPredictor) Len() int {
	return c.cache.Len()
}

// featureKey encodes the exact bit pattern of every value.
func featureKey(features []float64) string {
	var b strings.Builder
	b.Grow(len(features) * 17)
	for i, f := range features {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
	}
	return b.String()
}
