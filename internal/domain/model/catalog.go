package model

// CatalogEntry is one model advertised by a provider's /models endpoint.
type CatalogEntry struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
}
