package usecase

import "strings"

// Match scores, in priority order
const (
	scoreExact          = 1.0
	scoreSubstring      = 0.8
	scoreWordOverlapMax = 0.6
)

// Score computes the relevance in [0,1] of a product name against a canonical
// ingredient name. The first matching rule wins:
//   - exact match after canonicalizing the product name: 1.0
//   - product name contains the ingredient name: 0.8
//   - share of ingredient words found inside some product word, times 0.6
//   - otherwise 0
func Score(candidateName, canonical string) float64 {
	if canonical == "" {
		return 0
	}

	name := Canonicalize(candidateName)
	if name == "" {
		return 0
	}

	if name == canonical {
		return scoreExact
	}

	if strings.Contains(name, canonical) {
		return scoreSubstring
	}

	canonicalWords := strings.Fields(canonical)
	candidateWords := strings.Fields(name)

	matched := 0
	for _, cw := range canonicalWords {
		for _, word := range candidateWords {
			if strings.Contains(word, cw) {
				matched++
				break
			}
		}
	}

	if matched == 0 {
		return 0
	}

	return scoreWordOverlapMax * float64(matched) / float64(len(canonicalWords))
}

// BestScore returns the highest Score of candidateName against any of terms
func BestScore(candidateName string, terms []string) float64 {
	best := 0.0
	for _, term := range terms {
		if s := Score(candidateName, term); s > best {
			best = s
			if best == scoreExact {
				break
			}
		}
	}
	return best
}
