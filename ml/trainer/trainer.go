// Package trainer fits the fighter network with gorgonia. Only the training binary links it.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"fightnet/ml"
)

// Config captures the knobs of a training run.
type Config struct {
	Epochs       int
	Samples      int
	LearningRate float64
	LogEvery     int
	Seed         int64
}

// DefaultConfig is 50 full-batch Adam epochs over 500 synthetic samples at lr 0.01.
func DefaultConfig() Config {
	return Config{
		Epochs:       50,
		Samples:      500,
		LearningRate: 0.01,
		LogEvery:     10,
		Seed:         1,
	}
}

// Result is the outcome of Run.
type Result struct {
	Network   *ml.Network
	Losses    []float64
	Duration  time.Duration
	TrainedAt time.Time
}

// FinalLoss returns the loss of the last epoch.
func (r *Result) FinalLoss() float64 {
	if r == nil || len(r.Losses) == 0 {
		return 0
	}
	return r.Losses[len(r.Losses)-1]
}

// Run fits a freshly initialised network on a synthetic dataset drawn from cfg.Seed.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Result, error) {
	if cfg.Samples <= 0 {
		return nil, errors.New("trainer: samples must be > 0")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := ml.SyntheticDataset(cfg.Samples, rng)
	return RunOn(ctx, ml.NewNetwork(rng), ds, cfg, logger)
}

// RunOn runs cfg.Epochs full-batch steps of binary cross-entropy with Adam on ds,
// starting from init. init itself is left untouched.
func RunOn(ctx context.Context, init *ml.Network, ds ml.Dataset, cfg Config, logger *zap.Logger) (*Result, error) {
	if cfg.Epochs <= 0 {
		return nil, errors.New("trainer: epochs must be > 0")
	}
	if cfg.LearningRate <= 0 {
		return nil, errors.New("trainer: learning rate must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	xData, yData, err := ds.Flatten()
	if err != nil {
		return nil, err
	}
	n := ds.Len()

	g := G.NewGraph()
	x := G.NewMatrix(g, tensor.Float64, G.WithShape(n, ml.InputSize), G.WithName("x"),
		G.WithValue(tensor.New(tensor.WithShape(n, ml.InputSize), tensor.WithBacking(xData))))
	y := G.NewMatrix(g, tensor.Float64, G.WithShape(n, 1), G.WithName("y"),
		G.WithValue(tensor.New(tensor.WithShape(n, 1), tensor.WithBacking(yData))))

	names := ml.ParamNames()
	learnables := make(G.Nodes, 0, len(names))
	for i, p := range init.Params() {
		rows, cols := ml.ParamShape(i)
		learnables = append(learnables, G.NewMatrix(g, tensor.Float64, G.WithShape(rows, cols), G.WithName(names[i]),
			G.WithValue(tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(p)))))
	}

	out, err := buildForward(x, learnables)
	if err != nil {
		return nil, err
	}
	losses, err := G.BinaryXent(out, y)
	if err != nil {
		return nil, fmt.Errorf("trainer: loss: %w", err)
	}
	cost, err := G.Mean(losses)
	if err != nil {
		return nil, fmt.Errorf("trainer: mean loss: %w", err)
	}
	if _, err := G.Grad(cost, learnables...); err != nil {
		return nil, fmt.Errorf("trainer: gradients: %w", err)
	}

	var costVal G.Value
	G.Read(cost, &costVal)

	vm := G.NewTapeMachine(g, G.BindDualValues(learnables...))
	defer vm.Close()
	solver := G.NewAdamSolver(G.WithLearnRate(cfg.LearningRate))

	start := time.Now()
	history := make([]float64, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := vm.RunAll(); err != nil {
			return nil, fmt.Errorf("trainer: epoch %d forward/backward: %w", epoch, err)
		}
		loss, err := scalarValue(costVal)
		if err != nil {
			return nil, err
		}
		if err := solver.Step(G.NodesToValueGrads(learnables)); err != nil {
			return nil, fmt.Errorf("trainer: epoch %d optimizer step: %w", epoch, err)
		}
		vm.Reset()

		history = append(history, loss)
		if epoch%cfg.LogEvery == 0 {
			logger.Info("training progress", zap.Int("epoch", epoch), zap.Float64("loss", loss))
		}
	}

	params := make([][]float64, len(learnables))
	for i, node := range learnables {
		data, ok := node.Value().Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("trainer: unexpected backing for %s", node.Name())
		}
		params[i] = data
	}
	trained, err := ml.NewNetworkFromParams(params)
	if err != nil {
		return nil, err
	}

	return &Result{
		Network:   trained,
		Losses:    history,
		Duration:  time.Since(start),
		TrainedAt: time.Now().UTC(),
	}, nil
}

func buildForward(x *G.Node, params G.Nodes) (*G.Node, error) {
	h := x
	layers := len(params) / 2
	for i := 0; i < layers; i++ {
		xw, err := G.Mul(h, params[2*i])
		if err != nil {
			return nil, fmt.Errorf("trainer: layer %d matmul: %w", i+1, err)
		}
		z, err := G.BroadcastAdd(xw, params[2*i+1], nil, []byte{0})
		if err != nil {
			return nil, fmt.Errorf("trainer: layer %d bias: %w", i+1, err)
		}
		if i == layers-1 {
			h, err = G.Sigmoid(z)
		} else {
			h, err = G.Rectify(z)
		}
		if err != nil {
			return nil, fmt.Errorf("trainer: layer %d activation: %w", i+1, err)
		}
	}
	return h, nil
}

func scalarValue(v G.Value) (float64, error) {
	if v == nil {
		return 0, errors.New("trainer: loss was not computed")
	}
	switch d := v.Data().(type) {
	case float64:
		return d, nil
	case float32:
		return float64(d), nil
	case []float64:
		if len(d) == 1 {
			return d[0], nil
		}
	}
	return 0, fmt.Errorf("trainer: unexpected loss value %T", v.Data())
}
