package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// JobEntry is a configured job: either a bare job name or a name with a
// human-friendly description. Both config forms decode into this struct.
type JobEntry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DisplayName returns the description when present, otherwise the job name.
func (e JobEntry) DisplayName() string {
	if strings.TrimSpace(e.Description) != "" {
		return e.Description
	}
	return e.Name
}

// ID returns the slug of the display name.
func (e JobEntry) ID() string {
	return Slug(e.DisplayName())
}

var errEmptyJobName = errors.New("job entry has an empty name")

// jobEntryObject avoids recursing into the custom decoders.
type jobEntryObject struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// UnmarshalYAML accepts either a scalar name or a {name, description} mapping.
func (e *JobEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*e = JobEntry{Name: strings.TrimSpace(name)}
	case yaml.MappingNode:
		var obj jobEntryObject
		if err := node.Decode(&obj); err != nil {
			return err
		}
		*e = JobEntry{Name: strings.TrimSpace(obj.Name), Description: strings.TrimSpace(obj.Description)}
	default:
		return fmt.Errorf("line %d: job entry must be a string or a mapping", node.Line)
	}
	if e.Name == "" {
		return fmt.Errorf("line %d: %w", node.Line, errEmptyJobName)
	}
	return nil
}

// UnmarshalJSON accepts either a string name or a {name, description} object.
func (e *JobEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = JobEntry{Name: strings.TrimSpace(name)}
	} else {
		var obj jobEntryObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("job entry must be a string or an object: %w", err)
		}
		*e = JobEntry{Name: strings.TrimSpace(obj.Name), Description: strings.TrimSpace(obj.Description)}
	}
	if e.Name == "" {
		return errEmptyJobName
	}
	return nil
}

// SectionConfig is a configured dashboard section.
type SectionConfig struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Maintainers []string   `json:"maintainers" yaml:"maintainers"`
	Jobs        []JobEntry `json:"jobs" yaml:"jobs"`
}

// SectionsFile is the top-level layout of the sections config file.
type SectionsFile struct {
	Sections []SectionConfig `json:"sections" yaml:"sections"`
}
