package palmto

import (
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// AnchorPair holds the start and end anchor of one tokenized trajectory
type AnchorPair struct {
	Start      spatial.Point
	End        spatial.Point
	StartToken int
	EndToken   int
}

// NgramModel holds the sequence statistics learned from tokenized
// trajectories: bigram and trigram successor tables with observation counts,
// plus per-trajectory start/end anchors used to seed generation.
type NgramModel struct {
	Bigrams  map[int]map[int]int
	Trigrams map[[2]int]map[int]int
	Anchors  []AnchorPair
}

// BuildNgrams learns bigram/trigram statistics from token sentences. Anchor
// coordinates are the grid-cell centers of each sentence's first and last
// token.
func BuildNgrams(sentences []Sentence, grid *spatial.Grid) *NgramModel {
	m := &NgramModel{
		Bigrams:  make(map[int]map[int]int),
		Trigrams: make(map[[2]int]map[int]int),
		Anchors:  make([]AnchorPair, 0, len(sentences)),
	}

	for _, s := range sentences {
		for i := 0; i+1 < len(s.Tokens); i++ {
			a, b := s.Tokens[i], s.Tokens[i+1]
			if m.Bigrams[a] == nil {
				m.Bigrams[a] = make(map[int]int)
			}
			m.Bigrams[a][b]++

			if i+2 < len(s.Tokens) {
				key := [2]int{a, b}
				if m.Trigrams[key] == nil {
					m.Trigrams[key] = make(map[int]int)
				}
				m.Trigrams[key][s.Tokens[i+2]]++
			}
		}

		first := s.Tokens[0]
		last := s.Tokens[len(s.Tokens)-1]
		m.Anchors = append(m.Anchors, AnchorPair{
			Start:      grid.CellCenter(first),
			End:        grid.CellCenter(last),
			StartToken: first,
			EndToken:   last,
		})
	}

	return m
}

// UniqueBigrams returns the number of distinct token pairs observed
func (m *NgramModel) UniqueBigrams() int {
	n := 0
	for _, successors := range m.Bigrams {
		n += len(successors)
	}
	return n
}

// UniqueTrigrams returns the number of distinct token triples observed
func (m *NgramModel) UniqueTrigrams() int {
	n := 0
	for _, successors := range m.Trigrams {
		n += len(successors)
	}
	return n
}
