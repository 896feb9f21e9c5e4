package dag

import (
	"sort"
	"strings"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// Panorama maps every validator the creator observed to the latest vertex of that validator it observed.
// Panorama of a built vertex must not be modified.
type Panorama map[idx.ValidatorID]hash.Vertex

type panoramaEntry struct {
	Validator idx.ValidatorID
	ID        hash.Vertex
}

// Get returns the observed vertex of validator.
func (p Panorama) Get(v idx.ValidatorID) (hash.Vertex, bool) {
	id, ok := p[v]
	return id, ok
}

// Len returns count of observed validators.
func (p Panorama) Len() int {
	return len(p)
}

// Validators returns the observed validators in ascending order.
func (p Panorama) Validators() []idx.ValidatorID {
	vv := make([]idx.ValidatorID, 0, len(p))
	for v := range p {
		vv = append(vv, v)
	}
	sort.Slice(vv, func(i, j int) bool {
		return vv[i] < vv[j]
	})
	return vv
}

// IDs returns the observed vertices, ordered by validator.
func (p Panorama) IDs() hash.Vertices {
	ids := make(hash.Vertices, 0, len(p))
	for _, v := range p.Validators() {
		ids = append(ids, p[v])
	}
	return ids
}

// Copy constructs a copy.
func (p Panorama) Copy() Panorama {
	cp := make(Panorama, len(p))
	for v, id := range p {
		cp[v] = id
	}
	return cp
}

func (p Panorama) String() string {
	ss := make([]string, 0, len(p))
	for _, v := range p.Validators() {
		ss = append(ss, p[v].ShortID(3))
	}
	return "[" + strings.Join(ss, ", ") + "]"
}

func (p Panorama) entries() []panoramaEntry {
	ee := make([]panoramaEntry, 0, len(p))
	for _, v := range p.Validators() {
		ee = append(ee, panoramaEntry{
			Validator: v,
			ID:        p[v],
		})
	}
	return ee
}

func panoramaFromEntries(ee []panoramaEntry) (Panorama, bool) {
	p := make(Panorama, len(ee))
	for i, e := range ee {
		// canonical encoding is strictly sorted by validator
		if i > 0 && ee[i-1].Validator >= e.Validator {
			return nil, false
		}
		p[e.Validator] = e.ID
	}
	return p, true
}
