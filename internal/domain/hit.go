package domain

// Payload carries the document content of a hit plus its flat metadata
// fields as stored in the collection.
type Payload struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchHit is a single similarity-search result. Immutable once returned
// by the search layer; ordering between hits is defined solely by Score,
// descending. Equal scores carry no secondary ordering.
type SearchHit struct {
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}
