package policy

// State holds the per-run accumulated statistics a policy decides on. It is
// owned exclusively by one runner for the lifetime of one run, mutated once
// per round via Record, and discarded at run end.
type State struct {
	K          int
	Step       int
	Pulls      []int
	RewardSums []float64
	SquareSums []float64

	// Stopped is set by the runner when the policy's stopping rule fires;
	// no further pulls occur afterwards.
	Stopped bool
	Best    *int
}

// NewState creates an empty state for K arms.
func NewState(k int) *State {
	return &State{
		K:          k,
		Pulls:      make([]int, k),
		RewardSums: make([]float64, k),
		SquareSums: make([]float64, k),
	}
}

// Record accumulates one pull. Callers guarantee arm is in range.
func (s *State) Record(arm int, reward float64) {
	s.Pulls[arm]++
	s.RewardSums[arm] += reward
	s.SquareSums[arm] += reward * reward
	s.Step++
}

// Mean returns the empirical mean of an arm, zero when unpulled.
func (s *State) Mean(arm int) float64 {
	if s.Pulls[arm] == 0 {
		return 0
	}
	return s.RewardSums[arm] / float64(s.Pulls[arm])
}

// Means returns the empirical means of all arms.
func (s *State) Means() []float64 {
	means := make([]float64, s.K)
	for a := range means {
		means[a] = s.Mean(a)
	}
	return means
}

// EmpiricalBest returns the pulled arm with the highest empirical mean, ties
// broken by lowest index. Unpulled arms are treated as infinitely uncertain
// and excluded; when no arm was pulled at all the result is arm 0.
func (s *State) EmpiricalBest() int {
	best := -1
	for a := 0; a < s.K; a++ {
		if s.Pulls[a] == 0 {
			continue
		}
		if best < 0 || s.Mean(a) > s.Mean(best) {
			best = a
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// LeastPulled returns the arm with the fewest pulls, lowest index on ties.
func (s *State) LeastPulled() int {
	least := 0
	for a := 1; a < s.K; a++ {
		if s.Pulls[a] < s.Pulls[least] {
			least = a
		}
	}
	return least
}

// MinPulls returns the smallest per-arm pull count.
func (s *State) MinPulls() int {
	m := s.Pulls[0]
	for _, n := range s.Pulls[1:] {
		if n < m {
			m = n
		}
	}
	return m
}
