package dice

// Exact-distribution bounds. Pools at or below both limits get a full
// outcome-count distribution and an exact median; larger pools fall back to
// the central-limit approximation (median := mean) and omit the distribution,
// trading precision for bounded memory.
const (
	maxExactDice  = 10
	maxExactSides = 20
)

// Probability summarizes the outcome space of a dice notation.
type Probability struct {
	Notation string
	Min      int
	Max      int
	Mean     float64
	Median   float64
	// Distribution maps each possible total (modifier included) to its
	// outcome count out of Sides^Count equally likely sequences. Nil when
	// Exact is false.
	Distribution map[int]int
	// Exact is true when Median and Distribution were computed by full
	// convolution rather than approximated.
	Exact bool
}

// Probabilities computes min/max/mean/median for notation, plus the exact
// outcome-count distribution for pools of at most 10 dice with at most 20
// sides each. For larger pools the median is approximated by the mean and
// the distribution is omitted.
//
// Postcondition: Min == Count + Modifier, Max == Count*Sides + Modifier, and
// when Exact, the distribution counts sum to Sides^Count.
func Probabilities(notation string) (Probability, error) {
	n, err := Parse(notation)
	if err != nil {
		return Probability{}, err
	}

	p := Probability{
		Notation: n.Raw,
		Min:      n.Count + n.Modifier,
		Max:      n.Count*n.Sides + n.Modifier,
		Mean:     float64(n.Count)*float64(n.Sides+1)/2 + float64(n.Modifier),
	}

	if n.Count > maxExactDice || n.Sides > maxExactSides {
		p.Median = p.Mean
		return p, nil
	}

	counts := convolve(n.Count, n.Sides)
	dist := make(map[int]int, len(counts))
	for sum, c := range counts {
		dist[sum+n.Modifier] = c
	}
	p.Distribution = dist
	p.Median = medianOf(counts, n.Sides) + float64(n.Modifier)
	p.Exact = true
	return p, nil
}

// convolve returns the outcome counts for the sum of count fair dice with the
// given number of sides, as a map from raw sum (no modifier) to count. Built
// by dynamic convolution of per-die uniform distributions.
func convolve(count, sides int) map[int]int {
	counts := map[int]int{0: 1}
	for die := 0; die < count; die++ {
		next := make(map[int]int, len(counts)*sides)
		for sum, c := range counts {
			for face := 1; face <= sides; face++ {
				next[sum+face] += c
			}
		}
		counts = next
	}
	return counts
}

// medianOf computes the exact median of a raw-sum distribution. For an even
// number of equally likely sequences the two middle order statistics are
// averaged.
func medianOf(counts map[int]int, sides int) float64 {
	total := 0
	minSum, maxSum := 0, 0
	for sum, c := range counts {
		total += c
		if minSum == 0 || sum < minSum {
			minSum = sum
		}
		if sum > maxSum {
			maxSum = sum
		}
	}

	// Walk totals in ascending order accumulating counts until the middle
	// positions are covered. Positions are 1-based.
	lowerPos := (total + 1) / 2
	upperPos := total/2 + 1

	cum := 0
	lower, upper := 0, 0
	for sum := minSum; sum <= maxSum; sum++ {
		c, ok := counts[sum]
		if !ok {
			continue
		}
		if cum < lowerPos && cum+c >= lowerPos {
			lower = sum
		}
		if cum < upperPos && cum+c >= upperPos {
			upper = sum
			break
		}
		cum += c
	}
	return float64(lower+upper) / 2
}
