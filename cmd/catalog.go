package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/tilepan/internal/catalog"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/ui/styles"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Create and inspect SQLite tile catalogs",
}

var catalogInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a tile catalog",
	Long: `Create a SQLite tile catalog and fill it with the builtin pool, or with the
items of a YAML content file.

Examples:
  # Catalog of the 40 builtin tiles
  tilepan catalog init tiles.db

  # Catalog of 100 builtin tiles
  tilepan catalog init tiles.db --size 100

  # Catalog from a content file
  tilepan catalog init tiles.db --from tiles.yaml

  # View it
  tilepan --catalog tiles.db`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogInit,
}

var catalogListCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List the tiles in a catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogList,
}

func init() {
	catalogInitCmd.Flags().String("from", "", "YAML content file to import")
	catalogInitCmd.Flags().Int("size", content.DefaultPoolSize, "number of builtin tiles")
	catalogListCmd.Flags().Int("limit", 0, "list at most this many tiles (0 lists all)")
	catalogCmd.AddCommand(catalogInitCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	var pool *content.Pool
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		p, err := content.LoadFile(from)
		if err != nil {
			return err
		}
		pool = p
	} else {
		size, _ := cmd.Flags().GetInt("size")
		if size < 1 {
			return fmt.Errorf("--size must be positive, got %d", size)
		}
		pool = content.Builtin(size)
	}

	c, err := catalog.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	n, err := c.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("catalog %s already has %d tiles", path, n)
	}

	items := pool.Items()
	tiles := make([]catalog.Tile, len(items))
	for i, it := range items {
		tiles[i] = catalog.Tile{ID: it.ID, Title: it.Title, URL: it.URL, Color: it.Color}
	}
	if err := c.Insert(ctx, tiles...); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tiles to %s\n", len(tiles), path)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	c, err := catalog.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	tiles, err := c.Items(ctx, limit)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(tiles))
	return err
}

// renderCatalog lays tiles out as a bordered table.
func renderCatalog(tiles []catalog.Tile) string {
	rows := make([][]string, len(tiles))
	for i, t := range tiles {
		rows[i] = []string{strconv.FormatInt(t.Position, 10), t.ID, t.Title, t.URL, t.Color}
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)).
		Headers("POS", "ID", "TITLE", "URL", "COLOR").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
