package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// InputSize is the number of features in a fighter pairing: seven per fighter.
const InputSize = 14

// LayerSizes is the fixed topology 14→16→8→1.
var LayerSizes = []int{InputSize, 16, 8, 1}

var ErrShape = errors.New("ml: shape mismatch")

type Activation int

const (
	ReLU Activation = iota
	Sigmoid
)

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("activation(%d)", int(a))
	}
}

// Layer is a dense layer computing act(x·W + b). Weights are input-major (in×out).
type Layer struct {
	Weights    *mat.Dense
	Bias       *mat.VecDense
	Activation Activation
}

// Network is the fixed feed-forward fighter network. It is not mutated by Forward,
// so one instance can serve concurrent callers.
type Network struct {
	Layers []Layer
}

// NewNetwork returns a network with weights and biases drawn from
// U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
func NewNetwork(rng *rand.Rand) *Network {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	net := &Network{Layers: make([]Layer, len(LayerSizes)-1)}
	for i := range net.Layers {
		in, out := LayerSizes[i], LayerSizes[i+1]
		bound := 1 / math.Sqrt(float64(in))

		w := make([]float64, in*out)
		for j := range w {
			w[j] = (rng.Float64()*2 - 1) * bound
		}
		b := make([]float64, out)
		for j := range b {
			b[j] = (rng.Float64()*2 - 1) * bound
		}

		act := ReLU
		if i == len(net.Layers)-1 {
			act = Sigmoid
		}
		net.Layers[i] = Layer{
			Weights:    mat.NewDense(in, out, w),
			Bias:       mat.NewVecDense(out, b),
			Activation: act,
		}
	}
	return net
}

// NewNetworkFromParams builds a network from flat row-major parameter slices, in layer
// order: w1, b1, w2, b2, w3, b3.
func NewNetworkFromParams(params [][]float64) (*Network, error) {
	want := 2 * (len(LayerSizes) - 1)
	if len(params) != want {
		return nil, fmt.Errorf("%w: got %d parameter tensors, want %d", ErrShape, len(params), want)
	}
	net := &Network{Layers: make([]Layer, len(LayerSizes)-1)}
	for i := range net.Layers {
		in, out := LayerSizes[i], LayerSizes[i+1]
		w, b := params[2*i], params[2*i+1]
		if len(w) != in*out {
			return nil, fmt.Errorf("%w: layer %d weights have %d values, want %d", ErrShape, i+1, len(w), in*out)
		}
		if len(b) != out {
			return nil, fmt.Errorf("%w: layer %d bias has %d values, want %d", ErrShape, i+1, len(b), out)
		}
		act := ReLU
		if i == len(net.Layers)-1 {
			act = Sigmoid
		}
		net.Layers[i] = Layer{
			Weights:    mat.NewDense(in, out, append([]float64(nil), w...)),
			Bias:       mat.NewVecDense(out, append([]float64(nil), b...)),
			Activation: act,
		}
	}
	return net, nil
}

// Params returns copies of the parameters in the order NewNetworkFromParams expects.
func (n *Network) Params() [][]float64 {
	params := make([][]float64, 0, 2*len(n.Layers))
	for _, layer := range n.Layers {
		params = append(params, append([]float64(nil), layer.Weights.RawMatrix().Data...))
		params = append(params, append([]float64(nil), layer.Bias.RawVector().Data...))
	}
	return params
}

// ParamNames names the tensors returned by Params.
func ParamNames() []string {
	names := make([]string, 0, 2*(len(LayerSizes)-1))
	for i := 1; i < len(LayerSizes); i++ {
		names = append(names, fmt.Sprintf("fc%d.weight", i), fmt.Sprintf("fc%d.bias", i))
	}
	return names
}

// ParamShape returns the (rows, cols) shape of the i-th tensor returned by Params.
// Biases are reported as 1×out.
func ParamShape(i int) (int, int) {
	layer := i / 2
	if i%2 == 0 {
		return LayerSizes[layer], LayerSizes[layer+1]
	}
	return 1, LayerSizes[layer+1]
}

// Forward maps a batch of shape (N, 14) to probabilities of shape (N, 1).
func (n *Network) Forward(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != InputSize {
		return nil, fmt.Errorf("%w: input has %d features, want %d", ErrShape, cols, InputSize)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrShape)
	}

	current := mat.DenseCopyOf(x)
	for _, layer := range n.Layers {
		_, out := layer.Weights.Dims()
		next := mat.NewDense(rows, out, nil)
		next.Mul(current, layer.Weights)
		bias := layer.Bias.RawVector().Data
		act := layer.Activation
		next.Apply(func(_, j int, v float64) float64 {
			return activate(act, v+bias[j])
		}, next)
		current = next
	}
	return current, nil
}

// Predict runs one forward pass for a single feature vector and returns the
// probability that fighter A wins.
func (n *Network) Predict(features []float64) (float64, error) {
	if len(features) != InputSize {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShape, len(features), InputSize)
	}
	x := mat.NewDense(1, InputSize, append([]float64(nil), features...))
	out, err := n.Forward(x)
	if err != nil {
		return 0, err
	}
	return out.At(0, 0), nil
}

func activate(act Activation, v float64) float64 {
	switch act {
	case ReLU:
		if v < 0 {
			return 0
		}
		return v
	case Sigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}
