package worker

import "math/rand"

// defaultRNGSeed is the fixed seed used in place of a zero run seed.
// Arbitrary but stable so unseeded runs stay reproducible.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand: seed==0 maps to
// defaultRNGSeed, any other seed is used verbatim.
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64-style avalanche finalizer, so consecutive ranks
// derived from the same parent get well-decorrelated streams.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// deriveWorkerRNG returns an independent deterministic RNG for one worker
// rank, derived from a single run seed so a rerun with the same seed
// produces the same sequence of donation-target picks per rank.
func deriveWorkerRNG(runSeed int64, rank int) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(rngFromSeed(runSeed).Int63(), uint64(rank))))
}

// pickDonationTarget chooses a uniformly random rank other than self among
// the candidates (typically "every rank currently marked paused"),
// returning -1 if candidates is empty.
func pickDonationTarget(rng *rand.Rand, self int, candidates []int) int {
	eligible := candidates[:0:0]
	for _, c := range candidates {
		if c != self {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return -1
	}
	return eligible[rng.Intn(len(eligible))]
}
