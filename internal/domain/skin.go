package domain

// Case is a container grouping skins in the catalog.
type Case struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Skin is a catalog item. Rows are immutable after creation; the settlement
// core only ever reads them.
type Skin struct {
	ID       string `json:"id"`
	CaseID   string `json:"case_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Price    Money  `json:"price"`

	// MarketHashName identifies the item type on the external trading
	// platform; the dispatcher matches it against the agent inventory.
	MarketHashName string `json:"market_hash_name"`
}
