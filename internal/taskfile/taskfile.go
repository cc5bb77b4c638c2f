// Package taskfile reads and writes work items kept in a YAML or JSON file.
// Locations are resolved through afs, so anything afs can address works.
package taskfile

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"gopkg.in/yaml.v3"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// Document is the on-disk layout. A bare list of items is accepted as well.
type Document struct {
	Tasks []allocation.WorkItem `yaml:"tasks" json:"tasks"`
}

type Source struct {
	URL string
	fs  afs.Service
}

func New(URL string) *Source {
	return &Source{URL: URL, fs: afs.New()}
}

func (s *Source) Name() string {
	return "file:" + s.URL
}

func (s *Source) WorkItems(ctx context.Context) ([]allocation.WorkItem, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("reading task file %s: %w", s.URL, err)
	}
	items, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("task file %s: %w", s.URL, err)
	}
	return items, nil
}

// Decode parses a document or a bare list. JSON input is valid YAML and goes
// through the same path.
func Decode(data []byte) ([]allocation.WorkItem, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if len(doc.Content) == 0 {
		return []allocation.WorkItem{}, nil
	}

	root := doc.Content[0]
	var items []allocation.WorkItem
	switch root.Kind {
	case yaml.MappingNode:
		var d Document
		if err := root.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding tasks: %w", err)
		}
		items = d.Tasks
	case yaml.SequenceNode:
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("decoding tasks: %w", err)
		}
	default:
		return nil, fmt.Errorf("expected a list of tasks or a tasks mapping")
	}

	if items == nil {
		items = []allocation.WorkItem{}
	}
	return items, nil
}

// Save writes items as a YAML document to URL.
func Save(ctx context.Context, URL string, items []allocation.WorkItem) error {
	data, err := yaml.Marshal(Document{Tasks: items})
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if err := afs.New().Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing task file %s: %w", URL, err)
	}
	return nil
}
