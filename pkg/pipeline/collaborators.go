package pipeline

import "context"

// ImageData is one selected product image ready for model input.
type ImageData struct {
	Path  string
	MIME  string
	Bytes []byte
}

// Request is one vision/language inference call. Image is nil for text-only
// calls such as the enrichment stage.
type Request struct {
	Product string
	Prompt  string
	Image   *ImageData
}

// Analyzer is the vision/language collaborator. Output is raw text expected
// to resemble a structured payload but not guaranteed; the pipeline treats
// it as opaque and untrusted.
type Analyzer interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// SearchResult is one ranked web-search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher is the web-search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]SearchResult, error)
}

// ImageSource is the filesystem collaborator: it discovers an item's image
// paths and loads a selected image's bytes.
type ImageSource interface {
	Find(folder string) ([]string, error)
	Load(path string) (*ImageData, error)
}
