package ragd

// Document is a stored passage.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Segment is one titled chunk of a divided paragraph.
type Segment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
