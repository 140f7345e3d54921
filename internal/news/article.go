package news

// Article is a raw candidate returned by a source, not yet deduplicated or
// enriched. It is passed by value through the pipeline; the persistent
// form lives in the storage package.
type Article struct {
	URL         string
	Title       string
	Author      string
	ImageURL    string
	PublishedAt string
}
