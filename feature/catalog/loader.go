package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collection-manager/core/collection"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const metaFile = "meta.json"

// Loader reads card printings from the catalog data directory.
type Loader struct {
	cfg    Config
	logger *zap.Logger
}

// NewLoader creates a new catalog loader.
func NewLoader(cfg Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Load reads every catalog file in the data directory and returns the
// printings they describe, in canonical identity order.
// Any problem is fatal; all problems found are returned together.
func (l *Loader) Load(ctx context.Context) ([]collection.CardPrinting, error) {
	dir, err := ExpandPath(l.cfg.DataPath)
	if err != nil {
		return nil, collection.NewCatalogError(l.cfg.DataPath, "cannot resolve data path", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, collection.NewCatalogError(dir, "data path is not accessible", err)
	}
	if !info.IsDir() {
		return nil, collection.NewCatalogError(dir, "data path is not a directory", nil)
	}

	files, err := catalogFiles(dir)
	if err != nil {
		return nil, collection.NewCatalogError(dir, "cannot list data path", err)
	}
	if len(files) == 0 {
		return nil, collection.NewCatalogError(dir, "no catalog files found", nil)
	}

	b := newBuilder(l.cfg.IncludeOnlineOnly)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sets, err := readFile(filepath.Join(dir, name))
		if err != nil {
			b.problem(fmt.Errorf("%s: %w", name, err))
			continue
		}
		for _, set := range sets {
			b.addSet(name, set)
		}
	}

	if len(b.problems) > 0 {
		return nil, collection.NewCatalogError(dir,
			fmt.Sprintf("%d problem(s) in catalog", len(b.problems)),
			multierr.Combine(b.problems...))
	}

	printings := b.printings
	collection.SortPrintings(printings)

	l.logger.Info("Catalog read",
		zap.String("path", dir),
		zap.Int("files", len(files)),
		zap.Int("sets", b.sets),
		zap.Int("skipped_online_sets", b.skippedOnline),
		zap.Int("printings", len(printings)),
	)
	return printings, nil
}

// catalogFiles lists the catalog files directly inside dir, sorted by name.
func catalogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(e.Name(), metaFile) {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func readFile(path string) ([]setFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

// builder accumulates printings and problems across catalog files.
type builder struct {
	includeOnline bool
	printings     []collection.CardPrinting
	seen          map[string]string
	problems      []error
	sets          int
	skippedOnline int
}

func newBuilder(includeOnline bool) *builder {
	return &builder{includeOnline: includeOnline, seen: make(map[string]string)}
}

func (b *builder) problem(err error) {
	b.problems = append(b.problems, err)
}

func (b *builder) addSet(file string, set setFile) {
	code := strings.ToUpper(strings.TrimSpace(set.Code))
	if code == "" {
		b.problem(fmt.Errorf("%s: set %q has no code", file, set.Name))
		return
	}
	if set.onlineOnly() && !b.includeOnline {
		b.skippedOnline++
		return
	}
	b.sets++

	for i, card := range set.Cards {
		number := strings.TrimSpace(string(card.Number))
		name := strings.TrimSpace(card.Name)
		if number == "" || name == "" {
			b.problem(fmt.Errorf("%s: %s card %d: name and number are required", file, code, i+1))
			continue
		}

		finishes, err := cardFinishes(card)
		if err != nil {
			b.problem(fmt.Errorf("%s: %s #%s: %w", file, code, number, err))
			continue
		}

		for _, finish := range finishes {
			p := collection.CardPrinting{
				SetCode:    code,
				Number:     number,
				Finish:     finish,
				Name:       name,
				SetName:    set.Name,
				OnlineOnly: set.onlineOnly(),
			}
			key := p.Identity().Key()
			if first, dup := b.seen[key]; dup {
				b.problem(fmt.Errorf("%s: duplicate printing %s (first defined in %s)", file, key, first))
				continue
			}
			b.seen[key] = file
			b.printings = append(b.printings, p)
		}
	}
}

// cardFinishes resolves the finishes a card is printed in, nonfoil when the
// card says nothing.
func cardFinishes(card cardFile) ([]collection.Finish, error) {
	if len(card.Finishes) > 0 {
		out := make([]collection.Finish, 0, len(card.Finishes))
		for _, f := range card.Finishes {
			finish := collection.Finish(strings.ToLower(strings.TrimSpace(f)))
			if !finish.Valid() {
				return nil, fmt.Errorf("unknown finish %q", f)
			}
			out = append(out, finish)
		}
		return out, nil
	}

	if card.HasFoil == nil && card.HasNonFoil == nil {
		return []collection.Finish{collection.FinishNonfoil}, nil
	}

	var out []collection.Finish
	if card.HasNonFoil != nil && *card.HasNonFoil {
		out = append(out, collection.FinishNonfoil)
	}
	if card.HasFoil != nil && *card.HasFoil {
		out = append(out, collection.FinishFoil)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("card has no finishes")
	}
	return out, nil
}
