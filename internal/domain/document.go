package domain

// KeyPrefix namespaces every key ragd writes to the store.
const KeyPrefix = "ragd:"

// Document is a stored passage: caller-assigned id plus free text content.
// The embedding is derived from the content and lives only inside the store.
type Document struct {
	ID      string
	Content string
}

// ScoredDocument is a document returned by a similarity query.
type ScoredDocument struct {
	Document
	Score float64 // cosine similarity in [0,1], higher is closer
}
