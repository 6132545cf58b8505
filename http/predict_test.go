package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fightnet/ml"
)

type fakeModel struct {
	p   float64
	err error
}

func (f *fakeModel) Predict(features []float64) (float64, error) {
	return f.p, f.err
}

func newTestMux(p ml.Predictor) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(p)
	return mux
}

func postPredict(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func featuresBody(values []float64) string {
	payload, _ := json.Marshal(map[string][]float64{"features": values})
	return string(payload)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestHandlePredict(t *testing.T) {
	mux := newTestMux(&fakeModel{p: 0.75})
	defer SetPredictor(nil)

	w := postPredict(t, mux, featuresBody(repeat(0.5, ml.InputSize)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload ml.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.FighterA != 75 || payload.FighterB != 25 {
		t.Fatalf("unexpected prediction: %+v", payload)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"fighterA"`)) || !bytes.Contains(w.Body.Bytes(), []byte(`"fighterB"`)) {
		t.Fatalf("unexpected field names: %s", w.Body.String())
	}
}

func TestHandlePredictWithNetwork(t *testing.T) {
	net := ml.NewNetwork(rand.New(rand.NewSource(3)))
	mux := newTestMux(net)
	defer SetPredictor(nil)

	inputs := [][]float64{
		repeat(0.5, ml.InputSize),
		repeat(0, ml.InputSize),
		repeat(1, ml.InputSize),
		{0.5, 0.8, 0.9, 0.8, 0.2, 0.4, 0.25, 0.6, 0.7, 0.85, 0.5, 0.5, 0.1, 0.1},
	}
	for _, input := range inputs {
		w := postPredict(t, mux, featuresBody(input))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var payload ml.Prediction
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if math.Abs(payload.FighterA+payload.FighterB-100) > 1e-9 {
			t.Fatalf("percentages sum to %f", payload.FighterA+payload.FighterB)
		}
		if payload.FighterA < 0 || payload.FighterA > 100 || payload.FighterB < 0 || payload.FighterB > 100 {
			t.Fatalf("percentages out of range: %+v", payload)
		}
	}
}

func TestHandlePredictDeterministic(t *testing.T) {
	net := ml.NewNetwork(rand.New(rand.NewSource(8)))
	mux := newTestMux(net)
	defer SetPredictor(nil)

	body := featuresBody(repeat(0, ml.InputSize))
	first := postPredict(t, mux, body).Body.String()
	for i := 0; i < 5; i++ {
		if got := postPredict(t, mux, body).Body.String(); got != first {
			t.Fatalf("response %d differs: %s vs %s", i, got, first)
		}
	}
}

func TestHandlePredictWrongLength(t *testing.T) {
	model := &fakeModel{p: 0.5}
	mux := newTestMux(model)
	defer SetPredictor(nil)

	for _, n := range []int{0, 13, 15} {
		w := postPredict(t, mux, featuresBody(repeat(0.5, n)))
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("length %d: expected 422, got %d", n, w.Code)
		}
		var payload map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if !strings.Contains(payload["error"], "14") {
			t.Fatalf("expected error to name the expected width, got %q", payload["error"])
		}
	}
}

func TestHandlePredictInvalidBody(t *testing.T) {
	mux := newTestMux(&fakeModel{p: 0.5})
	defer SetPredictor(nil)

	bodies := []string{
		`not json`,
		`{}`,
		`{"features": null}`,
		`{"features": "abc"}`,
		`{"features": [1, 2, "x"]}`,
		featuresBody(repeat(0.5, ml.InputSize)) + ` junk`,
		featuresBody(repeat(0.5, ml.InputSize)) + featuresBody(repeat(0.5, ml.InputSize)),
	}
	for _, body := range bodies {
		w := postPredict(t, mux, body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422, got %d", body, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("body %q: expected json error, got %q", body, ct)
		}
	}
}

func TestHandlePredictTrailingWhitespace(t *testing.T) {
	mux := newTestMux(&fakeModel{p: 0.5})
	defer SetPredictor(nil)

	w := postPredict(t, mux, featuresBody(repeat(0.5, ml.InputSize))+"\n  \n")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlePredictModelError(t *testing.T) {
	mux := newTestMux(&fakeModel{err: errors.New("kaboom")})
	defer SetPredictor(nil)

	w := postPredict(t, mux, featuresBody(repeat(0.5, ml.InputSize)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "kaboom") {
		t.Fatalf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestHandlePredictNotLoaded(t *testing.T) {
	mux := newTestMux(nil)

	w := postPredict(t, mux, featuresBody(repeat(0.5, ml.InputSize)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandlePredictMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeModel{p: 0.5})
	defer SetPredictor(nil)

	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestServerRejectsOversizedBody(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxBodyBytes = 64
	srv := NewServer(cfg, nil)
	SetPredictor(&fakeModel{p: 0.5})
	defer SetPredictor(nil)

	w := postPredict(t, srv.Handler(), featuresBody(repeat(0.123456789, ml.InputSize)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestServerPredictThroughMiddleware(t *testing.T) {
	srv := NewServer(DefaultServerConfig(), nil)
	SetPredictor(&fakeModel{p: 0.2})
	defer SetPredictor(nil)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(featuresBody(repeat(0.5, ml.InputSize))))
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("expected CORS header on response")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}
