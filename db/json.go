package db

import (
	"encoding/json"
	"fmt"
	"os"
)

type jsonWeights struct {
	Run     RunInfo  `json:"run"`
	Tensors []Tensor `json:"tensors"`
}

func writeJSON(path string, tensors []Tensor, info RunInfo) error {
	payload, err := json.MarshalIndent(jsonWeights{Run: info, Tensors: tensors}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("db: write weights: %w", err)
	}
	return nil
}

func readJSON(path string) ([]Tensor, RunInfo, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, RunInfo{}, err
	}
	var doc jsonWeights
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, RunInfo{}, fmt.Errorf("db: decode weights: %w", err)
	}
	return doc.Tensors, doc.Run, nil
}
