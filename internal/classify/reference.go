package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/franz/netease-audit/internal/util"
)

// DefaultRedLabels applies when the reference file names no red labels
var DefaultRedLabels = []string{"独立发行", "null"}

// LabelRule maps a source-language label name to its western name
type LabelRule struct {
	Source  string `yaml:"source"`
	Western string `yaml:"western"`
}

// Reference holds the static lookup tables used for classification
type Reference struct {
	Labels          []LabelRule
	RedCopyrights   map[int64]bool
	MajorCopyrights map[int64]bool
	RedLabels       map[string]bool
}

type referenceFile struct {
	Labels    []LabelRule `yaml:"labels"`
	Copyright struct {
		Red    []int64 `yaml:"red"`
		Majors []int64 `yaml:"majors"`
	} `yaml:"copyright"`
	RedLabels []string `yaml:"red_labels"`
}

// LoadReference reads reference tables from a YAML file
func LoadReference(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference %s: %w", path, err)
	}
	ref, err := ParseReference(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// ParseReference decodes reference tables. Label rule order is preserved.
func ParseReference(data []byte) (*Reference, error) {
	var f referenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	for i, rule := range f.Labels {
		if rule.Source == "" || rule.Western == "" {
			return nil, fmt.Errorf("%w: label rule %d needs source and western", util.ErrInvalidConfig, i+1)
		}
	}

	redLabels := f.RedLabels
	if redLabels == nil {
		redLabels = DefaultRedLabels
	}

	return &Reference{
		Labels:          f.Labels,
		RedCopyrights:   idSet(f.Copyright.Red),
		MajorCopyrights: idSet(f.Copyright.Majors),
		RedLabels:       stringSet(redLabels),
	}, nil
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
