package pointsource

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

// FileSource reads point lists from a YAML document keyed by source id:
//
//	sources:
//	  line1:
//	    - temp.zone1
//	    - temp.zone2
type FileSource struct {
	path string
}

type pointsFile struct {
	Sources map[string][]string `yaml:"sources"`
}

// NewFileSource creates a file-backed point source. The file is re-read on
// every call so reconciliation always sees the latest content.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the backing file path (watched by the daemon).
func (s *FileSource) Path() string { return s.path }

// ListPointNames implements Source.
func (s *FileSource) ListPointNames(ctx context.Context, sourceID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.WrapConfig(err, fmt.Sprintf("read point file %s", s.path))
	}

	var doc pointsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapConfig(err, fmt.Sprintf("parse point file %s", s.path))
	}

	raw, ok := doc.Sources[sourceID]
	if !ok {
		return nil, errors.ConfigError("unknown point source id").WithContext("source_id", sourceID)
	}

	return normalizeNames(raw), nil
}
