// internal/layouts/layouts.go
//
// Resolves layout names (e.g. "example.txt") to fleet layouts.
//
// Sources, first match wins:
//   1. LAYOUT_DIR, when configured.
//   2. battleship/layouts under the XDG data home and every XDG data dir.
//   3. The layouts embedded in the binary (assets package).
//
// Names are bare file names; anything with a path separator or ".." is
// rejected before any source is consulted. Every failure is a game.LoadError,
// so callers can treat "missing" and "malformed" as the same invalid-layout
// condition.

package layouts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/assets"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// xdgSubdir is where layouts live under each XDG data directory.
const xdgSubdir = "battleship/layouts"

// Source is one place layouts can be read from.
type Source struct {
	Name string // for logs: "dir", "xdg", "embedded"
	FS   fs.FS
}

// Catalog looks layouts up across its sources in order.
type Catalog struct {
	sources []Source
}

// New builds the standard catalog: dir (if non-empty), XDG data dirs, then
// the embedded layouts.
func New(dir string) *Catalog {
	var srcs []Source
	if dir != "" {
		srcs = append(srcs, Source{Name: "dir", FS: os.DirFS(dir)})
	}
	for _, d := range append([]string{xdg.DataHome}, xdg.DataDirs...) {
		p := filepath.Join(d, xdgSubdir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			srcs = append(srcs, Source{Name: "xdg", FS: os.DirFS(p)})
		}
	}
	srcs = append(srcs, Source{Name: "embedded", FS: assets.Layouts()})
	return &Catalog{sources: srcs}
}

// FromSources builds a catalog over explicit sources.
func FromSources(srcs ...Source) *Catalog {
	return &Catalog{sources: srcs}
}

// Load reads and validates the named layout.
// Returns the fleet and the raw lines it was built from.
func (c *Catalog) Load(name string) (*game.Fleet, []string, error) {
	if err := validName(name); err != nil {
		return nil, nil, &game.LoadError{Err: err}
	}
	for _, src := range c.sources {
		if _, err := fs.Stat(src.FS, name); err != nil {
			continue
		}
		fleet, lines, err := game.LoadFleetFS(src.FS, name)
		if err != nil {
			log.Debug().Err(err).Str("layout", name).Str("source", src.Name).Msg("layout rejected")
			return nil, nil, err
		}
		log.Debug().Str("layout", name).Str("source", src.Name).Int("ships", fleet.Len()).Msg("layout loaded")
		return fleet, lines, nil
	}
	return nil, nil, &game.LoadError{Err: fmt.Errorf("%w: %s not found", game.ErrIO, name)}
}

// Names lists every *.txt layout across all sources, sorted and deduplicated.
func (c *Catalog) Names() []string {
	seen := make(map[string]struct{})
	for _, src := range c.sources {
		matches, err := fs.Glob(src.FS, "*.txt")
		if err != nil {
			continue
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Playable lists the names from Names that load as valid fleets, in the same
// order. Rejected files are logged and skipped.
func (c *Catalog) Playable() []string {
	var out []string
	for _, n := range c.Names() {
		if _, _, err := c.Load(n); err != nil {
			log.Warn().Err(err).Str("layout", n).Msg("layout skipped")
			continue
		}
		out = append(out, n)
	}
	return out
}

// Has reports whether any source contains name.
func (c *Catalog) Has(name string) bool {
	if validName(name) != nil {
		return false
	}
	for _, src := range c.sources {
		if _, err := fs.Stat(src.FS, name); err == nil {
			return true
		}
	}
	return false
}

var errBadName = errors.New("bad layout name")

// validName accepts bare file names only.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return fmt.Errorf("%w: %w: %q", game.ErrIO, errBadName, name)
	}
	return nil
}
