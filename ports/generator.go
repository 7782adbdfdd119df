package ports

import (
	"lcgwalk/domain/sequence"
)

// SequenceGenerator produces a candidate sample sequence for one seed.
type SequenceGenerator interface {
	Generate(cfg sequence.GeneratorConfig, count int) (sequence.SampleSequence, error)
}

// SeedSource yields initial seeds that differ across agents.
type SeedSource interface {
	NextSeed() int64
}
