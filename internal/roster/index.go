package roster

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// indexMaxNeighbors is the M parameter of the HNSW graph.
const indexMaxNeighbors = 16

// Neighbor is one similarity search result.
type Neighbor struct {
	StudentID string
	Name      string
	Distance  float64
}

// SimilarityIndex answers "who looks alike" queries over the roster with an
// approximate nearest neighbor graph. It is advisory only; attendance
// matching always does the exact scan. The index rebuilds lazily whenever
// the store generation moves.
type SimilarityIndex struct {
	store *Store

	mu         sync.Mutex
	graph      *hnsw.Graph[string]
	size       int
	generation uint64
}

// NewSimilarityIndex creates an index over the given store.
func NewSimilarityIndex(store *Store) *SimilarityIndex {
	return &SimilarityIndex{store: store}
}

func (x *SimilarityIndex) rebuild() {
	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	snapshot := x.store.Snapshot()
	for _, c := range snapshot {
		g.Add(hnsw.MakeNode(c.StudentID, c.Embedding))
	}
	x.graph = g
	x.size = len(snapshot)
}

// Search returns up to k students most similar to the query embedding. The
// queried student itself is included when the query is their own embedding;
// callers filter as needed.
func (x *SimilarityIndex) Search(query []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if gen := x.store.Generation(); x.graph == nil || gen != x.generation {
		x.rebuild()
		x.generation = gen
	}
	if x.size == 0 {
		return nil, nil
	}

	nodes := x.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		student, ok := x.store.Get(n.Key)
		if !ok {
			// Removed from the roster after the last rebuild.
			continue
		}
		neighbors = append(neighbors, Neighbor{
			StudentID: n.Key,
			Name:      student.Name,
			Distance:  euclidean64(query, n.Value),
		})
	}
	return neighbors, nil
}

func euclidean64(a, b []float32) float64 {
	return float64(hnsw.EuclideanDistance(a, b))
}
