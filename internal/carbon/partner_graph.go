package carbon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PartnerEdge references a distribution partner by identifier. A nil rate
// falls back to the product's bid_request_distribution_rate default and then
// to GlobalBidRequestDistributionRate.
type PartnerEdge struct {
	Identifier                 string           `json:"identifier" yaml:"identifier"`
	BidRequestDistributionRate *decimal.Decimal `json:"bid_request_distribution_rate,omitempty" yaml:"bid_request_distribution_rate,omitempty"`
}

// GraphProduct is an unmodeled ad tech platform product in a partner graph.
type GraphProduct struct {
	Name       string
	Identifier string
	Facts      Values
	Defaults   Values
	Partners   []PartnerEdge
	Corporate  CorporateAllocation
}

// PartnerGraph holds ad tech platform products and their distribution edges.
// Modeling visits partners before the platforms that forward bid requests to
// them, so secondary emissions always see modeled partners.
type PartnerGraph struct {
	products map[string]GraphProduct
	ids      []string
}

// NewPartnerGraph creates an empty graph.
func NewPartnerGraph() *PartnerGraph {
	return &PartnerGraph{products: make(map[string]GraphProduct)}
}

// Add inserts a product. Identifiers must be unique and non-empty.
func (g *PartnerGraph) Add(p GraphProduct) error {
	if p.Identifier == "" {
		return fmt.Errorf("%w: product %q has no identifier", ErrInvalidInput, p.Name)
	}
	if _, ok := g.products[p.Identifier]; ok {
		return fmt.Errorf("%w: duplicate product identifier %q", ErrInvalidInput, p.Identifier)
	}
	g.products[p.Identifier] = p
	g.ids = append(g.ids, p.Identifier)
	return nil
}

// Len returns the number of products.
func (g *PartnerGraph) Len() int {
	return len(g.ids)
}

// Order returns product identifiers so that every partner precedes the
// products distributing to it. Products keep insertion order otherwise.
func (g *PartnerGraph) Order() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.ids))
	order := make([]string, 0, len(g.ids))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(path, " -> "), id)
		}
		p, ok := g.products[id]
		if !ok {
			return fmt.Errorf("%w: unknown distribution partner %q", ErrInvalidInput, id)
		}
		state[id] = visiting
		path = append(path, id)
		for _, edge := range p.Partners {
			if _, ok := g.products[edge.Identifier]; !ok {
				return fmt.Errorf("%w: %s references unknown distribution partner %q",
					ErrInvalidInput, id, edge.Identifier)
			}
			if err := visit(edge.Identifier); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, id := range g.ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Model models every product in dependency order and returns the results in
// insertion order.
func (g *PartnerGraph) Model(trace *Trace, depth int) ([]ModeledAdTechPlatform, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	modeled := make(map[string]ModeledAdTechPlatform, len(order))
	for _, id := range order {
		p := g.products[id]
		partners := make([]DistributionPartner, 0, len(p.Partners))
		for _, edge := range p.Partners {
			partners = append(partners, DistributionPartner{
				Partner:                    modeled[edge.Identifier],
				BidRequestDistributionRate: edgeRate(edge, p.Defaults),
			})
		}
		m, err := NewAdTechPlatform(p.Facts, p.Defaults, trace).ModelProduct(ProductInput{
			Name:       p.Name,
			Identifier: p.Identifier,
			Partners:   partners,
			Corporate:  p.Corporate,
		}, depth)
		if err != nil {
			return nil, fmt.Errorf("modeling %s: %w", id, err)
		}
		modeled[id] = m
	}

	out := make([]ModeledAdTechPlatform, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, modeled[id])
	}
	return out, nil
}

func edgeRate(edge PartnerEdge, defaults Values) decimal.Decimal {
	if edge.BidRequestDistributionRate != nil {
		return *edge.BidRequestDistributionRate
	}
	if d, ok := defaults[FieldBidRequestDistributionRate]; ok {
		return d
	}
	return GlobalBidRequestDistributionRate
}
