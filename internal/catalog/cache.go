package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// Cache sizes and TTL. The catalog is small and effectively immutable at
// runtime; the TTL only exists so out-of-band catalog edits land eventually.
const (
	cacheSize = 256
	cacheTTL  = 5 * time.Minute

	casesKey = "cases"
)

// catalogCache provides an in-memory LRU cache for catalog reads.
type catalogCache struct {
	cases *expirable.LRU[string, []domain.Case]
	skins *expirable.LRU[string, []domain.Skin]
}

func newCatalogCache() *catalogCache {
	return &catalogCache{
		cases: expirable.NewLRU[string, []domain.Case](1, nil, cacheTTL),
		skins: expirable.NewLRU[string, []domain.Skin](cacheSize, nil, cacheTTL),
	}
}

func (c *catalogCache) GetCases() ([]domain.Case, bool) {
	return c.cases.Get(casesKey)
}

func (c *catalogCache) SetCases(cases []domain.Case) {
	c.cases.Add(casesKey, cases)
}

func (c *catalogCache) GetSkins(caseID string) ([]domain.Skin, bool) {
	return c.skins.Get(caseID)
}

func (c *catalogCache) SetSkins(caseID string, skins []domain.Skin) {
	c.skins.Add(caseID, skins)
}
