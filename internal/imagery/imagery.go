// Package imagery is the filesystem collaborator: it discovers product image
// folders and loads image bytes for model input.
package imagery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/pipeline"
)

// imageMIMEs maps accepted image extensions to their MIME types.
var imageMIMEs = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Source reads images from the local filesystem. It implements
// pipeline.ImageSource.
type Source struct{}

// New creates a filesystem image source.
func New() *Source { return &Source{} }

// Find returns the image files directly inside folder, sorted by name.
// Non-image files and subdirectories are skipped. An empty result is not an
// error here; the pipeline decides what an empty image set means.
func (s *Source) Find(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageMIMEs[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one image file. MIME falls back to image/jpeg for unrecognized
// extensions so a misnamed file still reaches the model.
func (s *Source) Load(path string) (*pipeline.ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mime := imageMIMEs[strings.ToLower(filepath.Ext(path))]
	if mime == "" {
		mime = "image/jpeg"
	}
	return &pipeline.ImageData{Path: path, MIME: mime, Bytes: data}, nil
}

// Discover builds batch items from a base directory: every direct
// subdirectory is one product, named after its folder.
func Discover(base string) ([]catalog.Item, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, errors.WrapIO("list", base, err)
	}

	var items []catalog.Item
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		items = append(items, catalog.Item{
			Name:   entry.Name(),
			Folder: filepath.Join(base, entry.Name()),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
