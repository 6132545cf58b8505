package ml

import (
	"errors"
	"testing"
)

type countingPredictor struct {
	calls int
	p     float64
	err   error
}

func (c *countingPredictor) Predict(features []float64) (float64, error) {
	c.calls++
	return c.p, c.err
}

func TestCachedPredictorMemoises(t *testing.T) {
	inner := &countingPredictor{p: 0.3}
	pred, err := NewCachedPredictor(inner, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := []float64{0.1, 0.2, 0.3}
	for i := 0; i < 3; i++ {
		p, err := pred.Predict(features)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != 0.3 {
			t.Fatalf("expected 0.3, got %f", p)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 underlying call, got %d", inner.calls)
	}

	if _, err := pred.Predict([]float64{0.1, 0.2, 0.30000000000000004}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected distinct key for distinct bits, got %d calls", inner.calls)
	}
	if pred.(*CachedPredictor).Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", pred.(*CachedPredictor).Len())
	}
}

func TestCachedPredictorDoesNotCacheErrors(t *testing.T) {
	inner := &countingPredictor{err: errors.New("boom")}
	pred, _ := NewCachedPredictor(inner, 4)
	pred.Predict([]float64{1})
	pred.Predict([]float64{1})
	if inner.calls != 2 {
		t.Fatalf("expected errors to bypass cache, got %d calls", inner.calls)
	}
}

func TestCachedPredictorDisabled(t *testing.T) {
	inner := &countingPredictor{}
	pred, err := NewCachedPredictor(inner, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred != Predictor(inner) {
		t.Fatal("expected size 0 to return the inner predictor")
	}
}
