package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"go.uber.org/zap"

	"fightnet/ml"
)

var predictor ml.Predictor

// SetPredictor 设置预测模型，服务启动时调用一次
func SetPredictor(p ml.Predictor) {
	predictor = p
}

type predictRequest struct {
	Features *[]float64 `json:"features"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if predictor == nil {
		respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	features, status, err := decodeFeatures(r)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	p, err := predictor.Predict(features)
	if err != nil {
		if errors.Is(err, ml.ErrShape) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		logger.Error("prediction is not finite", zap.String("request_id", GetRequestID(r.Context())), zap.Float64("p", p))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	respondJSON(w, http.StatusOK, ml.NewPrediction(p))
}

// decodeFeatures parses the request body and enforces the fixed input width.
func decodeFeatures(r *http.Request) ([]float64, int, error) {
	var req predictRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return nil, decodeStatus(err), bodyError(err)
	}
	// exactly one JSON value per body
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return nil, decodeStatus(err), bodyError(err)
	}
	if req.Features == nil {
		return nil, http.StatusUnprocessableEntity, errors.New("features is required")
	}
	features := *req.Features
	if len(features) != ml.InputSize {
		return nil, http.StatusUnprocessableEntity, fmt.Errorf("features must contain %d values, got %d", ml.InputSize, len(features))
	}
	return features, http.StatusOK, nil
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusUnprocessableEntity
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
	}
	return fmt.Errorf("invalid request body: %v", err)
}
