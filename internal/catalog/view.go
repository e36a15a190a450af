package catalog

import (
	"sync"

	"khavho-commerce/internal/domain"
)

// FilterAll is the sentinel tag that selects the full catalog.
const FilterAll = "all"

// ProjectionState distinguishes the empty renderings of a view.
type ProjectionState string

const (
	// StatePending means no catalog load has completed yet.
	StatePending ProjectionState = "pending"
	// StateEmpty means the catalog loaded but holds no products.
	StateEmpty ProjectionState = "empty"
	// StateNoMatches means the catalog has products but none match the filter.
	StateNoMatches ProjectionState = "no_matches"
	// StateOK means the projection holds at least one product.
	StateOK ProjectionState = "ok"
)

// Projection is the rendered output of a view: the matching products in
// store order plus the state a consumer needs to pick an empty message.
type Projection struct {
	State    ProjectionState  `json:"state"`
	Filter   string           `json:"filter"`
	Products []domain.Product `json:"products"`
}

// View projects the catalog cache's snapshot into the subset matching a
// category tag. It holds no product data of its own; each Render reads
// the cache's current snapshot, so a view can never go stale relative
// to the cache.
type View struct {
	cache *Cache

	mu     sync.RWMutex
	filter string
}

// NewView creates a view over cache with the "all" filter selected.
func NewView(cache *Cache) *View {
	return &View{cache: cache, filter: FilterAll}
}

// SetFilter selects the category tag to project. Pure state change, no I/O.
func (v *View) SetFilter(tag string) {
	if tag == "" {
		tag = FilterAll
	}
	v.mu.Lock()
	v.filter = tag
	v.mu.Unlock()
}

// Filter returns the currently selected tag.
func (v *View) Filter() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// Render projects the cache's current snapshot through the selected
// filter. Deterministic: the same snapshot and tag always produce the
// same ordered output, and store order is preserved.
func (v *View) Render() Projection {
	return Project(v.cache.Snapshot(), v.cache.Loaded(), v.Filter())
}

// Project applies a category tag to a snapshot. Exposed as a function
// so handlers can project ad hoc without registering a view.
func Project(snapshot []domain.Product, loaded bool, tag string) Projection {
	if tag == "" {
		tag = FilterAll
	}
	p := Projection{Filter: tag, Products: []domain.Product{}}

	if !loaded {
		p.State = StatePending
		return p
	}
	if len(snapshot) == 0 {
		p.State = StateEmpty
		return p
	}

	for _, product := range snapshot {
		if tag == FilterAll || product.Category == tag {
			p.Products = append(p.Products, product)
		}
	}
	if len(p.Products) == 0 {
		p.State = StateNoMatches
		return p
	}
	p.State = StateOK
	return p
}
