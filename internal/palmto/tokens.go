// Package palmto implements the trajectory modeling pipeline: grid
// tokenization, n-gram sequence statistics and synthesis of new plausible
// trajectories from the learned model.
package palmto

import (
	"fmt"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// Sentence is one trajectory expressed as a sequence of grid-cell tokens
type Sentence struct {
	TripID string
	Tokens []int
}

// CreateTokens builds the spatial grid over the study area and converts each
// trajectory into a token sequence. Points outside the grid are dropped;
// trajectories with no in-grid points are skipped entirely.
func CreateTokens(trajs []models.Trajectory, boundary spatial.Boundary, cellSize int) (*spatial.Grid, []Sentence, error) {
	grid, err := spatial.BuildGrid(boundary, cellSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build grid: %w", err)
	}

	sentences := make([]Sentence, 0, len(trajs))
	for _, t := range trajs {
		tokens := make([]int, 0, len(t.Geometry))
		for _, p := range t.Geometry {
			if idx, ok := grid.CellIndex(p); ok {
				tokens = append(tokens, idx)
			}
		}
		if len(tokens) == 0 {
			continue
		}
		sentences = append(sentences, Sentence{TripID: t.TripID, Tokens: tokens})
	}

	return grid, sentences, nil
}
