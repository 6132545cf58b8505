// Package fighter turns boxer profiles into the normalised feature vector the network
// consumes.
package fighter

import (
	"regexp"
	"strconv"

	"fightnet/ml"
)

// FeaturesPerFighter is half of ml.InputSize.
const FeaturesPerFighter = ml.InputSize / 2

// Profile is the subset of a fighter record used for prediction.
type Profile struct {
	Name      string  `yaml:"name" json:"name"`
	Age       float64 `yaml:"age" json:"age"`
	Weight    float64 `yaml:"weight" json:"weight"` // pounds
	Reach     float64 `yaml:"reach" json:"reach"`   // inches
	Wins      float64 `yaml:"wins" json:"wins"`
	Losses    float64 `yaml:"losses" json:"losses"`
	Knockouts float64 `yaml:"knockouts" json:"knockouts"`
	Bouts     float64 `yaml:"bouts" json:"bouts"`
}

// Features returns the seven scaled stats, each roughly in [0,1].
func (p Profile) Features() []float64 {
	return []float64{
		p.Age / 50,
		p.Weight / 250,
		p.Reach / 80,
		ratio(p.Wins, p.Bouts),
		ratio(p.Losses, p.Bouts),
		ratio(p.Knockouts, p.Bouts),
		p.Bouts / 100,
	}
}

// Pair concatenates a's and b's features; the prediction's fighterA refers to a.
func Pair(a, b Profile) []float64 {
	features := make([]float64, 0, ml.InputSize)
	features = append(features, a.Features()...)
	return append(features, b.Features()...)
}

var leadingNumber = regexp.MustCompile(`[\d.]+`)

// ParseReach extracts inches from strings like `71.7" / 182 cm`. It returns 0 when
// no number is present.
func ParseReach(s string) float64 {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// no bouts means no record, not a division by zero
func ratio(n, bouts float64) float64 {
	if bouts <= 0 {
		return 0
	}
	return n / bouts
}
