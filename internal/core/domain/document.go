package domain

// RawPage is a page as fetched from the wiki, markup body included.
type RawPage struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Version int    `json:"version,omitempty"`
	Body    string `json:"body"`
}

// Document is a normalized corpus entry. Text carries no markup and no
// whitespace runs; documents with empty text never reach the index.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Version int    `json:"version,omitempty"`
	Text    string `json:"text"`
}
