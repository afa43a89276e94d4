// Package cluster groups headers into equivalence classes by embedding
// similarity.
//
// Clustering is single-link: every header pair at or above the similarity
// threshold is unioned, and connected components become clusters. Cosine
// similarity is not transitive, so components can chain through bridge
// headers (A~B, B~C clusters A with C even when A and C are dissimilar).
// The default threshold is tight enough that chains do not merge unrelated
// topics in practice; this is a known characteristic, not a defect.
package cluster

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/core/domain"
)

// Log key constants.
const (
	logKeyClusters = "clusters"
	logKeyHeaders  = "headers"
)

// Headers groups the flat ingest-ordered header list into clusters. The
// embeddings slice is parallel to headers and unit-norm, so inner products
// are cosine similarities. Within a cluster the first-ingested header (the
// one with the smallest ID) is accepted; every other member becomes a
// conflict record carrying its similarity to the accepted header and the
// lexical overlap of the two names. The overlap ratio is informational
// only: clustering gates on cosine similarity alone.
func Headers(headers []domain.Header, vectors [][]float32, threshold float32, logger *zerolog.Logger) []domain.HeaderCluster {
	if len(headers) == 0 {
		return nil
	}

	forest := newUnionFind(len(headers))

	for i := 0; i < len(headers); i++ {
		for j := i + 1; j < len(headers); j++ {
			if dot(vectors[i], vectors[j]) >= threshold {
				forest.union(i, j)
			}
		}
	}

	// Group members by representative, preserving first-seen order so the
	// resulting cluster list is ordered by ascending accepted header ID.
	groups := make(map[int][]int)
	order := make([]int, 0, len(headers))

	for i := range headers {
		root := forest.find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}

		groups[root] = append(groups[root], i)
	}

	clusters := make([]domain.HeaderCluster, 0, len(order))

	for _, root := range order {
		members := groups[root]
		accepted := members[0]

		hc := domain.HeaderCluster{
			Accepted:  headers[accepted],
			Members:   make([]domain.Header, 0, len(members)),
			Conflicts: make([]domain.HeaderConflict, 0, len(members)-1),
		}

		for _, m := range members {
			hc.Members = append(hc.Members, headers[m])

			if m == accepted {
				continue
			}

			hc.Conflicts = append(hc.Conflicts, domain.HeaderConflict{
				NoteID:       headers[m].NoteNum,
				HeaderID:     headers[m].ID,
				HeaderName:   headers[m].Name,
				Similarity:   dot(vectors[m], vectors[accepted]),
				OverlapRatio: nameOverlap(headers[m].Name, headers[accepted].Name),
			})
		}

		clusters = append(clusters, hc)
	}

	logger.Debug().
		Int(logKeyHeaders, len(headers)).
		Int(logKeyClusters, len(clusters)).
		Msg("header clustering complete")

	return clusters
}

// nameOverlap computes |W1 ∩ W2| / max(|W1|, |W2|) over the whitespace-split
// lowercase token sets of two header names.
func nameOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	longest := len(setA)
	if len(setB) > longest {
		longest = len(setB)
	}

	if longest == 0 {
		return 0
	}

	common := 0

	for token := range setA {
		if setB[token] {
			common++
		}
	}

	return float64(common) / float64(longest)
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)

	for _, token := range strings.Fields(strings.ToLower(name)) {
		set[token] = true
	}

	return set
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}
