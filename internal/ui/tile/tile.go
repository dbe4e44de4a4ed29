// Package tile renders one grid cell as a bordered box. Rendered boxes are
// cached by content and size since the same few items repeat across the grid.
package tile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/tilepan/internal/cachemanager"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/ui/styles"
)

// Spec is everything that determines a tile's rendering.
type Spec struct {
	Item     content.Item
	Key      int
	Row      int
	Col      int
	Width    int
	Height   int
	ShowKey  bool
	Selected bool
}

// CacheKey identifies a rendered tile in the cache.
type CacheKey string

// CacheKey derives the cache key. Keys and positions only participate when
// they are drawn, so every repetition of an item shares one entry.
func (s Spec) CacheKey() CacheKey {
	k := fmt.Sprintf("%s|%s|%s|%s|%dx%d|%t", s.Item.ID, s.Item.Title, s.Item.URL, s.Item.Color, s.Width, s.Height, s.Selected)
	if s.ShowKey {
		k += fmt.Sprintf("|%d@%d,%d", s.Key, s.Row, s.Col)
	}
	return CacheKey(k)
}

// Render draws the tile described by s. The result is exactly
// s.Width x s.Height cells.
func Render(s Spec) string {
	inner := s.Width - 2
	rows := s.Height - 2

	var lines []string
	if inner > 0 && rows > 0 {
		title := wordwrap.String(s.Item.Title, inner)
		for _, l := range strings.Split(title, "\n") {
			lines = append(lines, styles.TileTitleStyle.Render(l))
		}
		if s.Item.URL != "" {
			lines = append(lines, styles.TileMetaStyle.Render(shortURL(s.Item.URL)))
		}
		if s.ShowKey {
			// Key pinned to the last body row.
			for len(lines) < rows-1 {
				lines = append(lines, "")
			}
			lines = append(lines[:min(len(lines), rows-1)], styles.TileMetaStyle.Render(fmt.Sprintf("#%d %d,%d", s.Key, s.Row, s.Col)))
		}
	}

	border := lipgloss.TerminalColor(styles.BorderDefaultColor)
	if s.Item.Color != "" {
		border = lipgloss.Color(s.Item.Color)
	}
	if s.Selected {
		border = styles.BorderSelectColor
	}

	return styles.RenderTitledBox(strings.Join(lines, "\n"), s.Item.ID, s.Width, s.Height, border, border)
}

func shortURL(u string) string {
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimPrefix(u, "http://")
}

// Renderer renders tiles through a TTL cache.
type Renderer struct {
	store *cachemanager.InMemoryCacheManager[CacheKey, string]
	cache *cachemanager.ReadThroughCache[CacheKey, string, Spec]
	ttl   time.Duration
}

// NewRenderer creates a renderer whose entries live for ttl after their last
// use. ttl <= 0 uses the cache default.
func NewRenderer(ttl time.Duration) *Renderer {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	store := cachemanager.NewInMemoryCacheManager[CacheKey, string]("tiles", ttl, cachemanager.DefaultCleanupInterval)
	render := func(ctx context.Context, s Spec) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return Render(s), nil
	}
	return &Renderer{
		store: store,
		cache: cachemanager.NewReadThroughCache[CacheKey, string, Spec](store, render, false),
		ttl:   ttl,
	}
}

// Render returns the cached rendering of s, drawing it on a miss. A failed
// cache fill is logged and drawn uncached.
func (r *Renderer) Render(ctx context.Context, s Spec) string {
	key := s.CacheKey()
	out, err := r.cache.GetWithRefresh(ctx, key, s, r.ttl)
	if err != nil {
		log.ErrorErr(log.CatCache, "Tile render failed", err, "key", string(key))
		return Render(s)
	}
	return out
}

// Invalidate drops every cached tile, used when the content pool changes.
func (r *Renderer) Invalidate(ctx context.Context) {
	_ = r.cache.Invalidate(ctx)
}

// Stats reports cache effectiveness.
func (r *Renderer) Stats() cachemanager.Stats {
	return r.store.Stats()
}
