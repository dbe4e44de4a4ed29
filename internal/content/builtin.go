package content

import "fmt"

// DefaultPoolSize is the number of builtin items.
const DefaultPoolSize = 40

var (
	adjectives = []string{"Quiet", "Amber", "Distant", "Silver", "Wild", "Hollow", "Bright", "Misty"}
	nouns      = []string{"Harbor", "Meadow", "Ridge", "Canyon", "Grove"}
	palette    = []string{"#E06C75", "#E5C07B", "#98C379", "#56B6C2", "#61AFEF", "#C678DD", "#D19A66", "#ABB2BF"}
)

// Builtin returns n generated items backed by seeded picsum photos. Titles
// are unique for the first 40 items. n < 1 yields DefaultPoolSize items.
func Builtin(n int) *Pool {
	if n < 1 {
		n = DefaultPoolSize
	}
	items := make([]Item, n)
	for i := range items {
		seed := i + 1
		items[i] = Item{
			ID:    fmt.Sprintf("picsum-%d", seed),
			Title: adjectives[i%len(adjectives)] + " " + nouns[i%len(nouns)],
			URL:   fmt.Sprintf("https://picsum.photos/seed/%d/600/400", seed),
			Color: palette[i%len(palette)],
		}
	}
	p, _ := NewPool("builtin", items)
	return p
}
