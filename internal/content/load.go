package content

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/tilepan/internal/catalog"
	"github.com/zjrosen/tilepan/internal/log"
)

// Source selects where a pool is loaded from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceFile    Source = "file"
	SourceCatalog Source = "catalog"
)

// LoadConfig describes a content source.
type LoadConfig struct {
	Source   Source
	PoolSize int    // Builtin pool size, and catalog row limit when > 0
	File     string // YAML pool path for SourceFile
	Catalog  string // SQLite path for SourceCatalog
}

// Path returns the file backing the source, empty for builtin.
func (c LoadConfig) Path() string {
	switch c.Source {
	case SourceFile:
		return c.File
	case SourceCatalog:
		return c.Catalog
	default:
		return ""
	}
}

// poolFile is the on-disk YAML shape.
type poolFile struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads a YAML pool:
//
//	items:
//	  - id: harbor
//	    title: Quiet Harbor
//	    url: https://picsum.photos/seed/1/600/400
//	    color: "#61AFEF"
//
// Items without an id get one derived from their position.
func LoadFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-configured content file
	if err != nil {
		return nil, fmt.Errorf("reading content file: %w", err)
	}
	var f poolFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing content file %s: %w", path, err)
	}
	for i := range f.Items {
		if f.Items[i].ID == "" {
			f.Items[i].ID = fmt.Sprintf("item-%d", i+1)
		}
		if f.Items[i].Title == "" {
			f.Items[i].Title = f.Items[i].ID
		}
	}
	p, err := NewPool(path, f.Items)
	if err != nil {
		return nil, fmt.Errorf("content file %s: %w", path, err)
	}
	return p, nil
}

// WriteFile saves items in the LoadFile format.
func WriteFile(path string, items []Item) error {
	data, err := yaml.Marshal(poolFile{Items: items})
	if err != nil {
		return fmt.Errorf("encoding content file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: content file is not secret
		return fmt.Errorf("writing content file: %w", err)
	}
	return nil
}

// LoadCatalog reads a pool from a SQLite catalog, limited to limit rows when
// limit > 0.
func LoadCatalog(ctx context.Context, path string, limit int) (*Pool, error) {
	c, err := catalog.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	tiles, err := c.Items(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(tiles))
	for i, t := range tiles {
		items[i] = Item{ID: t.ID, Title: t.Title, URL: t.URL, Color: t.Color}
	}
	p, err := NewPool(path, items)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return p, nil
}

// Load builds the pool described by cfg.
func Load(ctx context.Context, cfg LoadConfig) (*Pool, error) {
	var (
		p   *Pool
		err error
	)
	switch cfg.Source {
	case SourceBuiltin, "":
		p = Builtin(cfg.PoolSize)
	case SourceFile:
		if cfg.File == "" {
			return nil, errors.New("content source file requires a path")
		}
		p, err = LoadFile(cfg.File)
	case SourceCatalog:
		if cfg.Catalog == "" {
			return nil, errors.New("content source catalog requires a path")
		}
		p, err = LoadCatalog(ctx, cfg.Catalog, cfg.PoolSize)
	default:
		return nil, fmt.Errorf("unknown content source %q", cfg.Source)
	}
	if err != nil {
		log.ErrorErr(log.CatContent, "Failed to load content", err, "source", cfg.Source)
		return nil, err
	}
	log.Info(log.CatContent, "Loaded content pool", "source", p.Source(), "items", p.Len())
	return p, nil
}
