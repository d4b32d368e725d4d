// Package catalog defines the attribute catalog and the data model shared by
// the extraction pipeline: attribute records with provenance and confidence,
// product profiles, and the defaults table. A catalog is an immutable ordered
// set of attribute names for one product class; every finished profile carries
// exactly one record per catalog entry, in catalog order.
package catalog

import (
	_ "embed"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/prodmap/prodmap/pkg/errors"
)

//go:embed camera.yaml
var embeddedCatalog []byte

// Catalog is a fixed ordered set of attribute names for a product class.
// It is immutable for the duration of a pipeline run and safe for
// concurrent reads.
type Catalog struct {
	name  string
	attrs []string
	index map[string]int
}

// catalogFile is the YAML shape of a catalog definition.
type catalogFile struct {
	Name       string   `yaml:"name"`
	Attributes []string `yaml:"attributes"`
}

// New creates a catalog from an ordered attribute list. Duplicate or empty
// names are rejected.
func New(name string, attrs []string) (*Catalog, error) {
	if len(attrs) == 0 {
		return nil, &errors.ValidationError{Field: "attributes", Message: "catalog must have at least one attribute"}
	}
	index := make(map[string]int, len(attrs))
	for i, attr := range attrs {
		if attr == "" {
			return nil, &errors.ValidationError{Field: "attributes", Message: "empty attribute name"}
		}
		if _, dup := index[attr]; dup {
			return nil, &errors.ValidationError{Field: "attributes", Value: attr, Message: "duplicate attribute name"}
		}
		index[attr] = i
	}
	return &Catalog{
		name:  name,
		attrs: slices.Clone(attrs),
		index: index,
	}, nil
}

// Default returns the embedded camera catalog.
func Default() *Catalog {
	cat, err := parseCatalog(embeddedCatalog)
	if err != nil {
		// The embedded file is validated by tests; a parse failure here is a
		// build defect, not a runtime condition.
		panic("catalog: embedded catalog invalid: " + err.Error())
	}
	return cat
}

// Load reads a catalog definition from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cat, err := parseCatalog(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return cat, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return New(file.Name, file.Attributes)
}

// Name returns the product-class name of the catalog.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of attributes in the catalog.
func (c *Catalog) Len() int { return len(c.attrs) }

// Attributes returns the attribute names in catalog order.
// The returned slice is a copy.
func (c *Catalog) Attributes() []string {
	return slices.Clone(c.attrs)
}

// Sorted returns the attribute names in lexical order, as used by the
// CSV export header.
func (c *Catalog) Sorted() []string {
	sorted := slices.Clone(c.attrs)
	slices.Sort(sorted)
	return sorted
}

// Has returns true if the catalog tracks the given attribute.
func (c *Catalog) Has(attr string) bool {
	_, ok := c.index[attr]
	return ok
}
