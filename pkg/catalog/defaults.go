package catalog

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/prodmap/prodmap/pkg/errors"
)

// Defaults is the optional table of fallback values, one per attribute.
// A configured default always fills an attribute slot that no higher-tier
// candidate claimed; this trades strict accuracy for completeness.
type Defaults map[string]Record

// defaultsFile is the YAML shape of a defaults table: attribute name to value.
type defaultsFile struct {
	Defaults map[string]string `yaml:"defaults"`
}

// LoadDefaults reads a defaults table from a YAML file and normalizes each
// entry to source=default, confidence=low. Attributes not in the catalog are
// rejected so a typo cannot silently create an orphan default.
func LoadDefaults(path string, cat *Catalog) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	defaults := make(Defaults, len(file.Defaults))
	for attr, value := range file.Defaults {
		if !cat.Has(attr) {
			return nil, &errors.ValidationError{
				Field:   "defaults",
				Value:   attr,
				Message: "attribute not in catalog",
			}
		}
		defaults[attr] = Record{
			Name:       attr,
			Value:      Ptr(value),
			Source:     SourceDefault,
			Confidence: ConfidenceLow,
		}
	}
	return defaults, nil
}
