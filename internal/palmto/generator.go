package palmto

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// maxWalkSteps caps the origin-destination walk so a disconnected pair of
// anchors cannot loop forever
const maxWalkSteps = 500

// Generator synthesizes new trajectories from a learned n-gram model. All
// random choices come from a seeded source, so the same seed reproduces the
// same output.
type Generator struct {
	model *NgramModel
	grid  *spatial.Grid
	rng   *rand.Rand
}

// NewGenerator creates a generator over a model and its grid
func NewGenerator(model *NgramModel, grid *spatial.Grid, seed int64) *Generator {
	return &Generator{
		model: model,
		grid:  grid,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// GenerateWithLength synthesizes n trajectories of the requested token
// length. Each walk starts from a randomly chosen start anchor and follows
// trigram statistics, falling back to bigrams when no trigram continuation
// exists.
func (g *Generator) GenerateWithLength(n, length int) ([]models.Trajectory, error) {
	if len(g.model.Anchors) == 0 {
		return nil, fmt.Errorf("model has no start anchors")
	}
	if length < 2 {
		return nil, fmt.Errorf("trajectory length must be at least 2, got %d", length)
	}

	now := time.Now().Unix()
	trajs := make([]models.Trajectory, 0, n)
	for i := 0; i < n; i++ {
		anchor := g.model.Anchors[g.rng.Intn(len(g.model.Anchors))]
		tokens := g.walk(anchor.StartToken, length, -1)
		trajs = append(trajs, g.toTrajectory(fmt.Sprintf("gen_%d", i), now, tokens))
	}

	return trajs, nil
}

// GenerateOriginDestination synthesizes n trajectories between observed
// start/end anchor pairs. A walk ends when it reaches the destination token
// or after maxWalkSteps.
func (g *Generator) GenerateOriginDestination(n int) ([]models.Trajectory, error) {
	if len(g.model.Anchors) == 0 {
		return nil, fmt.Errorf("model has no start anchors")
	}

	now := time.Now().Unix()
	trajs := make([]models.Trajectory, 0, n)
	for i := 0; i < n; i++ {
		anchor := g.model.Anchors[g.rng.Intn(len(g.model.Anchors))]
		tokens := g.walk(anchor.StartToken, maxWalkSteps, anchor.EndToken)
		trajs = append(trajs, g.toTrajectory(fmt.Sprintf("gen_%d", i), now, tokens))
	}

	return trajs, nil
}

// walk produces a token sequence starting at start, stopping at maxLen
// tokens, when the destination is reached (dest >= 0), or when the model has
// no continuation.
func (g *Generator) walk(start, maxLen, dest int) []int {
	tokens := []int{start}

	for len(tokens) < maxLen {
		var next int
		var ok bool

		if len(tokens) >= 2 {
			key := [2]int{tokens[len(tokens)-2], tokens[len(tokens)-1]}
			next, ok = g.pick(g.model.Trigrams[key])
		}
		if !ok {
			next, ok = g.pick(g.model.Bigrams[tokens[len(tokens)-1]])
		}
		if !ok {
			break
		}

		tokens = append(tokens, next)
		if dest >= 0 && next == dest {
			break
		}
	}

	return tokens
}

// pick draws a successor token weighted by observation count. Candidates are
// visited in sorted token order so a fixed seed yields a fixed choice.
func (g *Generator) pick(successors map[int]int) (int, bool) {
	if len(successors) == 0 {
		return 0, false
	}

	keys := make([]int, 0, len(successors))
	total := 0
	for k, w := range successors {
		keys = append(keys, k)
		total += w
	}
	sort.Ints(keys)

	r := g.rng.Intn(total)
	for _, k := range keys {
		r -= successors[k]
		if r < 0 {
			return k, true
		}
	}
	return keys[len(keys)-1], true
}

func (g *Generator) toTrajectory(tripID string, timestamp int64, tokens []int) models.Trajectory {
	points := make([]spatial.Point, 0, len(tokens))
	for _, tok := range tokens {
		points = append(points, g.grid.CellCenter(tok))
	}
	return models.Trajectory{
		TripID:    tripID,
		Timestamp: timestamp,
		Geometry:  points,
	}
}
