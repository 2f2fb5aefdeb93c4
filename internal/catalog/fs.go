package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anomalab/anomalab-go/internal/domain"
	"gopkg.in/yaml.v3"
)

// FSCatalog serves datasets from a directory of <id>.csv files. An
// optional <id>.meta.yaml sidecar carries the metadata used by selector
// predicates.
type FSCatalog struct {
	dir string
}

func NewFSCatalog(dir string) (*FSCatalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %q is not a directory", dir)
	}
	return &FSCatalog{dir: dir}, nil
}

func (c *FSCatalog) Resolve(ctx context.Context, id string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	path := filepath.Join(c.dir, id+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
		}
		return domain.Dataset{}, fmt.Errorf("open dataset %s: %w", id, err)
	}
	defer f.Close()

	metadata, err := c.readMetadata(id)
	if err != nil {
		return domain.Dataset{}, err
	}
	return readDataset(id, f, metadata)
}

func (c *FSCatalog) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("list catalog dir: %w", err)
	}
	var entries []Entry
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		id := strings.TrimSuffix(name, ".csv")
		metadata, err := c.readMetadata(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Metadata: metadata})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (c *FSCatalog) readMetadata(id string) (map[string]string, error) {
	blob, err := os.ReadFile(filepath.Join(c.dir, id+".meta.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata for %s: %w", id, err)
	}
	var metadata map[string]string
	if err := yaml.Unmarshal(blob, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %s: metadata: %v", ErrDatasetCorrupt, id, err)
	}
	return metadata, nil
}
