package ml

import (
	"errors"
	"math/rand"
)

var ErrEmptyDataset = errors.New("ml: dataset is empty")

// Dataset holds row-major features and 0/1 labels.
type Dataset struct {
	Features [][]float64
	Labels   []float64
}

func (d Dataset) Len() int { return len(d.Features) }

// SyntheticDataset draws n samples of InputSize uniform [0,1) features with
// independent fair-coin labels. The labels carry no signal; this is placeholder data.
func SyntheticDataset(n int, rng *rand.Rand) Dataset {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	ds := Dataset{
		Features: make([][]float64, n),
		Labels:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		row := make([]float64, InputSize)
		for j := range row {
			row[j] = rng.Float64()
		}
		ds.Features[i] = row
		ds.Labels[i] = float64(rng.Intn(2))
	}
	return ds
}

// Flatten returns the features and labels as row-major backing slices.
func (d Dataset) Flatten() (x []float64, y []float64, err error) {
	if d.Len() == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if len(d.Labels) != d.Len() {
		return nil, nil, errors.New("ml: features and labels size mismatch")
	}
	x = make([]float64, 0, d.Len()*InputSize)
	for _, row := range d.Features {
		if len(row) != InputSize {
			return nil, nil, ErrShape
		}
		x = append(x, row...)
	}
	y = append([]float64(nil), d.Labels...)
	return x, y, nil
}
