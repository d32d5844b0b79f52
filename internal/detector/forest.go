package detector

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Isolation forest tuning. The seed is fixed so repeated training over the
// same history fits the same forest.
const (
	DefaultContamination = 0.1
	forestTreeCount      = 100
	forestSubsampleSize  = 256
	forestSeed           = 42
	minTrainingSamples   = 10
	normalizationEpsilon = 1e-8
)

// IsolationForestDetector isolates anomalous measurement vectors with an
// ensemble of random partitioning trees. It is multivariate-capable: each
// training sample is a feature vector, normalized per feature before
// fitting. Train writes the fitted state once; Detect only reads it.
type IsolationForestDetector struct {
	contamination float64
	logger        zerolog.Logger

	mu     sync.RWMutex
	state  TrainState
	means  []float64
	stds   []float64
	trees  []*isoNode
	sample int
	offset float64
}

// NewIsolationForest builds an untrained detector. A non-positive
// contamination falls back to the default 10%.
func NewIsolationForest(contamination float64, logger zerolog.Logger) *IsolationForestDetector {
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}
	return &IsolationForestDetector{
		contamination: contamination,
		logger:        logger.With().Str("component", "isolation_forest").Logger(),
	}
}

// State reports whether the detector holds a fitted model.
func (d *IsolationForestDetector) State() TrainState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Train fits the forest on historical measurement vectors. Fewer than ten
// samples leave the detector untrained; that is logged, not fatal.
func (d *IsolationForestDetector) Train(samples [][]float64) {
	if len(samples) < minTrainingSamples {
		d.logger.Warn().Int("samples", len(samples)).
			Msgf("need at least %d samples to train isolation forest", minTrainingSamples)
		return
	}

	features := len(samples[0])
	means := make([]float64, features)
	stds := make([]float64, features)
	for f := 0; f < features; f++ {
		var sum float64
		for _, s := range samples {
			sum += s[f]
		}
		mean := sum / float64(len(samples))
		var acc float64
		for _, s := range samples {
			delta := s[f] - mean
			acc += delta * delta
		}
		means[f] = mean
		stds[f] = math.Sqrt(acc / float64(len(samples)))
	}

	normalized := make([][]float64, len(samples))
	for i, s := range samples {
		row := make([]float64, features)
		for f := 0; f < features; f++ {
			row[f] = (s[f] - means[f]) / (stds[f] + normalizationEpsilon)
		}
		normalized[i] = row
	}

	sampleSize := forestSubsampleSize
	if sampleSize > len(normalized) {
		sampleSize = len(normalized)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	rng := rand.New(rand.NewSource(forestSeed))
	trees := make([]*isoNode, forestTreeCount)
	for t := range trees {
		idx := rng.Perm(len(normalized))[:sampleSize]
		subset := make([][]float64, sampleSize)
		for i, j := range idx {
			subset[i] = normalized[j]
		}
		trees[t] = buildIsoTree(subset, 0, maxDepth, rng)
	}

	// Contamination quantile over the training scores sets the label cutoff.
	scores := make([]float64, len(normalized))
	for i, row := range normalized {
		scores[i] = pathScore(trees, row, sampleSize)
	}
	sort.Float64s(scores)
	cut := int(math.Ceil(float64(len(scores)) * (1 - d.contamination)))
	if cut >= len(scores) {
		cut = len(scores) - 1
	}
	offset := scores[cut]

	d.mu.Lock()
	d.means = means
	d.stds = stds
	d.trees = trees
	d.sample = sampleSize
	d.offset = offset
	d.state = Trained
	d.mu.Unlock()

	d.logger.Debug().Int("samples", len(samples)).Int("features", features).
		Float64("offset", offset).Msg("isolation forest trained")
}

// Detect scores a single measurement vector. Before Train it returns a
// non-anomalous verdict flagged as untrained.
func (d *IsolationForestDetector) Detect(vector []float64) ForestVerdict {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.state != Trained {
		return ForestVerdict{
			Verdict: Verdict{Description: descNotTrained},
			State:   Untrained,
		}
	}

	row := make([]float64, len(d.means))
	for f := range row {
		v := 0.0
		if f < len(vector) {
			v = vector[f]
		}
		row[f] = (v - d.means[f]) / (d.stds[f] + normalizationEpsilon)
	}

	raw := pathScore(d.trees, row, d.sample)
	isAnomaly := raw > d.offset

	// Logistic squash keeps the exposed score inside [0,1].
	score := 1 / (1 + math.Exp(-raw))

	description := "normal measurement"
	if isAnomaly {
		description = "anomaly detected"
	}

	return ForestVerdict{
		Verdict: Verdict{
			IsAnomaly:   isAnomaly,
			Score:       score,
			Description: description,
		},
		State:    Trained,
		RawScore: raw,
	}
}

// isoNode is one node of a random partitioning tree. Leaves carry the
// number of samples that reached them.
type isoNode struct {
	index int
	split float64
	left  *isoNode
	right *isoNode
	size  int
}

func buildIsoTree(data [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(data) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(data)}
	}

	features := len(data[0])
	idx := rng.Intn(features)

	lo, hi := data[0][idx], data[0][idx]
	for _, row := range data {
		if row[idx] < lo {
			lo = row[idx]
		}
		if row[idx] > hi {
			hi = row[idx]
		}
	}
	if lo == hi {
		return &isoNode{size: len(data)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range data {
		if row[idx] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isoNode{
		index: idx,
		split: split,
		size:  len(data),
		left:  buildIsoTree(left, depth+1, maxDepth, rng),
		right: buildIsoTree(right, depth+1, maxDepth, rng),
	}
}

func (n *isoNode) pathLength(row []float64, depth float64) float64 {
	if n.left == nil && n.right == nil {
		return depth + avgPathLength(n.size)
	}
	if row[n.index] < n.split {
		return n.left.pathLength(row, depth+1)
	}
	return n.right.pathLength(row, depth+1)
}

// pathScore returns the canonical isolation score 2^(-E[h]/c(n)); higher
// means more isolated.
func pathScore(trees []*isoNode, row []float64, sampleSize int) float64 {
	var total float64
	for _, tree := range trees {
		total += tree.pathLength(row, 0)
	}
	avg := total / float64(len(trees))
	c := avgPathLength(sampleSize)
	if c == 0 {
		return 0
	}
	return math.Pow(2, -avg/c)
}

// avgPathLength is the expected path length c(n) of an unsuccessful BST
// search, the standard isolation forest normalizer.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}
