// Package recognize provides 1:N identification over enrolled descriptors.
// It keeps an in-memory HNSW index keyed by identity key, rebuilt from the
// store on startup and extended incrementally as people enroll.
package recognize

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/balasai14/multi-face-reg/internal/constants"
	"github.com/balasai14/multi-face-reg/internal/database"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
)

// Candidate is one identification result: an enrolled identity and its
// descriptor distance from the query.
type Candidate struct {
	IdentityKey string  `json:"identityKey"`
	DisplayName string  `json:"displayName"`
	Distance    float64 `json:"distance"`
}

// Index answers nearest-identity queries over enrolled descriptors.
type Index struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[string]
	identities map[string]*database.Identity
	threshold  float64
}

// NewIndex creates an empty identification index. Candidates farther than
// threshold from the query are filtered out.
func NewIndex(threshold float64) *Index {
	return &Index{
		identities: make(map[string]*database.Identity),
		threshold:  threshold,
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Rebuild replaces the index contents with the given identities.
func (idx *Index) Rebuild(identities []database.Identity) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(identities) == 0 {
		idx.graph = nil
		idx.identities = make(map[string]*database.Identity)
		return nil
	}

	g := newGraph()
	idx.identities = make(map[string]*database.Identity, len(identities))

	for i := range identities {
		identity := &identities[i]
		if len(identity.Descriptor) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(identity.IdentityKey, identity.Descriptor))
		idx.identities[identity.IdentityKey] = identity
	}

	idx.graph = g
	return nil
}

// Add inserts a single identity into the index.
func (idx *Index) Add(identity *database.Identity) error {
	if len(identity.Descriptor) == 0 {
		return errors.New("identity has no descriptor")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.graph == nil {
		idx.graph = newGraph()
	}
	idx.graph.Add(hnsw.MakeNode(identity.IdentityKey, identity.Descriptor))
	idx.identities[identity.IdentityKey] = identity
	return nil
}

// Size returns the number of indexed identities.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.identities)
}

// Identify returns up to k enrolled identities nearest to the query
// descriptor, closest first, dropping candidates beyond the match threshold.
func (idx *Index) Identify(query []float32, k int) ([]Candidate, error) {
	if k <= 0 {
		k = constants.DefaultIdentifyLimit
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph == nil {
		return nil, nil
	}

	neighbors := idx.graph.Search(query, k)

	candidates := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		identity, ok := idx.identities[n.Key]
		if !ok {
			continue
		}
		// Exact distance from the node vector, not the graph's approximation.
		dist := descriptor.Distance(query, n.Value)
		if dist > idx.threshold {
			continue
		}
		candidates = append(candidates, Candidate{
			IdentityKey: identity.IdentityKey,
			DisplayName: identity.DisplayName,
			Distance:    dist,
		})
	}
	return candidates, nil
}
