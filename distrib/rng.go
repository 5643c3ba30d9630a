package distrib

import "math/rand"

// defaultRNGSeed mirrors the shared-memory worker package's convention:
// seed==0 maps here rather than producing a degenerate all-zero stream.
const defaultRNGSeed int64 = 1

func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// deriveRankRNG returns a deterministic RNG for one rank, derived from a
// single run seed so a rerun with the same seed picks the same sequence of
// donation targets per rank.
func deriveRankRNG(runSeed int64, rank int) *rand.Rand {
	s := runSeed
	if s == 0 {
		s = defaultRNGSeed
	}
	parent := rand.New(rand.NewSource(s)).Int63()
	return rand.New(rand.NewSource(deriveSeed(parent, uint64(rank))))
}

// pickDonationTarget chooses a uniformly random rank from candidates,
// excluding self, returning -1 when none remain.
func pickDonationTarget(rng *rand.Rand, self int, candidates []int) int {
	eligible := make([]int, 0, len(candidates))
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
