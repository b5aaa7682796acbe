// Package inputs loads the files a dashboard run is built from.
package inputs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/ciweather/schema"
	"gopkg.in/yaml.v3"
)

// LoadSections reads the sections config. Files ending in .json are decoded
// as JSON; anything else is decoded as YAML.
func LoadSections(path string) ([]schema.SectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections config: %w", err)
	}
	var file schema.SectionsFile
	if isJSON(path, data) {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse sections config %s: %w", path, err)
	}
	if len(file.Sections) == 0 {
		return nil, fmt.Errorf("sections config %s defines no sections", path)
	}
	for i, s := range file.Sections {
		if strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("section %d in %s needs an id or a name", i, path)
		}
	}
	return file.Sections, nil
}

func isJSON(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// LoadJobs reads and concatenates job lists. Each file holds either a bare
// array of jobs or a {"jobs": [...]} envelope.
func LoadJobs(paths ...string) ([]schema.Job, error) {
	var jobs []schema.Job
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read job list: %w", err)
		}
		list, err := decodeJobs(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse job list %s: %w", path, err)
		}
		jobs = append(jobs, list...)
	}
	return jobs, nil
}

func decodeJobs(data []byte) ([]schema.Job, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty job list")
	}
	if trimmed[0] == '[' {
		var jobs []schema.Job
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, err
		}
		return jobs, nil
	}
	var envelope schema.JobList
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Jobs, nil
}

// LogDir serves job logs stored as <jobId>.log or <jobId>.txt in a directory.
type LogDir struct {
	Dir string
}

// NewLogDir returns a LogDir rooted at dir. An empty dir has no logs.
func NewLogDir(dir string) *LogDir {
	return &LogDir{Dir: dir}
}

// ReadLog returns the log text of a job. A missing log wraps fs.ErrNotExist.
func (l *LogDir) ReadLog(jobID int64) ([]byte, error) {
	if l == nil || l.Dir == "" {
		return nil, fmt.Errorf("job %d: %w", jobID, fs.ErrNotExist)
	}
	id := strconv.FormatInt(jobID, 10)
	for _, ext := range []string{".log", ".txt"} {
		data, err := os.ReadFile(filepath.Join(l.Dir, id+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("job %d: %w", jobID, fs.ErrNotExist)
}

// LoadSnapshot reads a previous dashboard from path. A missing file yields
// (nil, nil); a corrupt one yields an error.
func LoadSnapshot(path string) (*schema.Dashboard, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot decodes a dashboard JSON document.
func DecodeSnapshot(data []byte) (*schema.Dashboard, error) {
	var dash schema.Dashboard
	if err := json.Unmarshal(data, &dash); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &dash, nil
}
