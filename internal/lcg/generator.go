package lcg

import (
	"math/bits"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
)

// Generator produces LCG sample sequences. It holds no state between calls.
type Generator struct{}

// NewGenerator creates a new generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate runs the recurrence from cfg.Seed and emits count values, each
// x_i / (m - 1) for i = 1..count. The denominator is m - 1 so outputs cover
// the closed interval [0, 1]; for m == 1 it is replaced by 1.
func (g *Generator) Generate(cfg sequence.GeneratorConfig, count int) (sequence.SampleSequence, error) {
	return Generate(cfg, count)
}

// Generate is the package-level form of Generator.Generate.
func Generate(cfg sequence.GeneratorConfig, count int) (sequence.SampleSequence, error) {
	if err := cfg.Validate(); err != nil {
		return sequence.SampleSequence{}, err
	}
	if count < 0 {
		return sequence.SampleSequence{}, core.NewSampleCountError(count, 0)
	}

	m := uint64(cfg.Modulus)
	a := reduce(cfg.Multiplier, m)
	c := reduce(cfg.Increment, m)
	x := reduce(cfg.Seed, m)

	denominator := float64(cfg.Modulus) - 1.0
	if denominator <= 0 {
		denominator = 1.0
	}

	values := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		x = mulAddMod(a, x, c, m)
		values = append(values, float64(x)/denominator)
	}

	if len(values) != count {
		return sequence.SampleSequence{}, core.NewSampleCountError(count, len(values))
	}
	return sequence.NewSampleSequence(values), nil
}

// reduce maps v into [0, m).
func reduce(v int64, m uint64) uint64 {
	r := v % int64(m)
	if r < 0 {
		r += int64(m)
	}
	return uint64(r)
}

// mulAddMod computes (a*x + c) mod m with a 128-bit intermediate.
// a, x and c must already be < m, and m <= 2^63.
func mulAddMod(a, x, c, m uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	lo, carry := bits.Add64(lo, c, 0)
	hi += carry
	return bits.Rem64(hi, lo, m)
}
