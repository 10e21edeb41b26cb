package prompts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultPrompt is served when no prompt file is available.
const DefaultPrompt = "Default prompt: describe your favorite day."

// Catalog is the full, read-only list of prompts. It is never mutated after
// construction so it can be shared by every room.
type Catalog struct {
	prompts []string
}

// NewCatalog builds a catalog from the given prompts, dropping blanks and
// duplicates while keeping first-seen order.
func NewCatalog(prompts []string) *Catalog {
	seen := make(map[string]struct{}, len(prompts))
	unique := make([]string, 0, len(prompts))
	for _, p := range prompts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	if len(unique) == 0 {
		unique = append(unique, DefaultPrompt)
	}
	return &Catalog{prompts: unique}
}

// Load reads one prompt per line from path. A missing file falls back to the
// default catalog; any other read error is returned.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("prompt file not found, using default prompt")
			return NewCatalog(nil), nil
		}
		return nil, fmt.Errorf("failed to open prompt file: %w", err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	log.Info().Str("path", path).Int("prompts", c.Len()).Msg("loaded prompt catalog")
	return c, nil
}

// Read parses one prompt per line.
func Read(r io.Reader) (*Catalog, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewCatalog(lines), nil
}

// All returns a fresh copy of every prompt, suitable as a room's draw pool.
func (c *Catalog) All() []string {
	return slices.Clone(c.prompts)
}

func (c *Catalog) Len() int {
	return len(c.prompts)
}
