// Package db persists trained network parameters to a single weights file.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fightnet/ml"
)

var ErrTopology = errors.New("db: weights do not match network topology")

// RunInfo describes the training run that produced a weights file.
type RunInfo struct {
	Epochs       int       `json:"epochs"`
	Samples      int       `json:"samples"`
	LearningRate float64   `json:"learning_rate"`
	Seed         int64     `json:"seed"`
	FinalLoss    float64   `json:"final_loss"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Tensor is one named parameter tensor in row-major order.
type Tensor struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// SaveWeights writes net and info to path, replacing any existing file. Files ending
// in .json use the JSON codec; everything else is a SQLite database.
func SaveWeights(path string, net *ml.Network, info RunInfo) error {
	if net == nil {
		return errors.New("db: network is nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("db: create weights dir: %w", err)
		}
	}

	tmp, err := tempPath(path)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	tensors := toTensors(net)
	if isJSON(path) {
		err = writeJSON(tmp, tensors, info)
	} else {
		err = writeSQLite(tmp, tensors, info)
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("db: replace weights file: %w", err)
	}
	return nil
}

// LoadWeights reads a weights file written by SaveWeights.
func LoadWeights(path string) (*ml.Network, RunInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, RunInfo{}, fmt.Errorf("db: weights file: %w", err)
	}

	var (
		tensors []Tensor
		info    RunInfo
		err     error
	)
	if isJSON(path) {
		tensors, info, err = readJSON(path)
	} else {
		tensors, info, err = readSQLite(path)
	}
	if err != nil {
		return nil, RunInfo{}, err
	}

	net, err := fromTensors(tensors)
	if err != nil {
		return nil, RunInfo{}, err
	}
	return net, info, nil
}

func toTensors(net *ml.Network) []Tensor {
	names := ml.ParamNames()
	params := net.Params()
	tensors := make([]Tensor, len(params))
	for i, data := range params {
		rows, cols := ml.ParamShape(i)
		tensors[i] = Tensor{Name: names[i], Rows: rows, Cols: cols, Data: data}
	}
	return tensors
}

func fromTensors(tensors []Tensor) (*ml.Network, error) {
	byName := make(map[string]Tensor, len(tensors))
	for _, t := range tensors {
		byName[t.Name] = t
	}

	names := ml.ParamNames()
	params := make([][]float64, len(names))
	for i, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrTopology, name)
		}
		rows, cols := ml.ParamShape(i)
		if t.Rows != rows || t.Cols != cols || len(t.Data) != rows*cols {
			return nil, fmt.Errorf("%w: %s is %dx%d (%d values), want %dx%d",
				ErrTopology, name, t.Rows, t.Cols, len(t.Data), rows, cols)
		}
		params[i] = t.Data
	}
	net, err := ml.NewNetworkFromParams(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTopology, err)
	}
	return net, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func tempPath(path string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("db: create temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}
