package seed

import (
	"context"
	"fmt"

	"github.com/angelodel80/cadmus-api/internal/item/service"
	"github.com/angelodel80/cadmus-api/pkg/logger"
)

// Stats counts what a run wrote.
type Stats struct {
	Items int `json:"items"`
	Parts int `json:"parts"`
}

// Seeder writes generated content through the item service, so seeded
// documents go through the same identity and ownership rules as API writes.
type Seeder struct {
	svc service.Service
	gen *Generator
}

func NewSeeder(svc service.Service, gen *Generator) *Seeder {
	return &Seeder{svc: svc, gen: gen}
}

// Run adds count items, assigning facets round-robin.
func (s *Seeder) Run(ctx context.Context, database string, count int, facets []string) (Stats, error) {
	var st Stats
	if len(facets) == 0 {
		facets = []string{"default"}
	}
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		owner := Owner(n)
		item, _, err := s.svc.AddItem(ctx, database, s.gen.Item(n, facets[(n-1)%len(facets)]), owner)
		if err != nil {
			return st, fmt.Errorf("adding item %d: %w", n, err)
		}
		st.Items++

		docs, err := s.gen.Parts(item.ID, n)
		if err != nil {
			return st, fmt.Errorf("generating parts of item %d: %w", n, err)
		}
		for _, doc := range docs {
			if _, err := s.svc.AddPart(ctx, database, doc, owner); err != nil {
				return st, fmt.Errorf("adding part to item %d: %w", n, err)
			}
			st.Parts++
		}
		if n%100 == 0 {
			logger.Infof("seed: %d/%d items", n, count)
		}
	}
	logger.Infof("seed: wrote %d items and %d parts to %s", st.Items, st.Parts, database)
	return st, nil
}
