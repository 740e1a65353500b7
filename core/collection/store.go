package collection

import (
	"context"
	"errors"
	"fmt"

	"collection-manager/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

// ErrCatalogLoaded is returned when the catalog is replaced twice in one session.
var ErrCatalogLoaded = errors.New("catalog already loaded in this session")

// Store is the relational collection store for one run.
// It owns the session exclusively and is not safe for concurrent use.
type Store struct {
	db            *gorm.DB
	logger        *zap.Logger
	batchSize     int
	catalogLoaded bool
}

// NewStore wraps an open database connection.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, batchSize: defaultBatchSize}
}

// Migrate creates the schema and verifies the resulting columns.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&CardPrinting{}, &CollectionEntry{}); err != nil {
		return fmt.Errorf("failed to migrate collection schema: %w", err)
	}
	if err := database.RequireColumns(db, CardPrinting{}.TableName(),
		"id", "set_code", "number", "finish", "name", "set_name", "online_only"); err != nil {
		return err
	}
	return database.RequireColumns(db, CollectionEntry{}.TableName(),
		"id", "source", "printing_id", "quantity", "notes", "source_row")
}

// Reset clears any rows left over from a previous session. The in-memory
// default is always empty; a persistent backend may not be.
func (s *Store) Reset(ctx context.Context) error {
	return s.Phase(ctx, "reset", func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CollectionEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear collection entries: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&CardPrinting{}).Error; err != nil {
			return fmt.Errorf("failed to clear card printings: %w", err)
		}
		return nil
	})
}

// Phase runs fn in its own transaction. Its effects are committed together
// when fn returns nil and discarded otherwise.
func (s *Store) Phase(ctx context.Context, name string, fn func(tx *gorm.DB) error) error {
	s.logger.Debug("Phase started", zap.String("phase", name))
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		s.logger.Debug("Phase rolled back", zap.String("phase", name), zap.Error(err))
		return err
	}
	s.logger.Debug("Phase committed", zap.String("phase", name))
	return nil
}

// ReplaceCatalog loads the catalog printings. It may run once per session
// and refuses to run while collection entries exist.
func (s *Store) ReplaceCatalog(ctx context.Context, printings []CardPrinting) error {
	if s.catalogLoaded {
		return ErrCatalogLoaded
	}

	rows := make([]CardPrinting, len(printings))
	copy(rows, printings)
	for i := range rows {
		rows[i].ID = 0
	}

	err := s.Phase(ctx, "catalog", func(tx *gorm.DB) error {
		entries, err := countEntries(tx)
		if err != nil {
			return fmt.Errorf("failed to count collection entries: %w", err)
		}
		if entries > 0 {
			return fmt.Errorf("cannot replace catalog while %d collection entries exist", entries)
		}
		if err := tx.Where("1 = 1").Delete(&CardPrinting{}).Error; err != nil {
			return fmt.Errorf("failed to clear card printings: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, s.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert card printings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.catalogLoaded = true
	s.logger.Info("Catalog loaded", zap.Int("printings", len(rows)))
	return nil
}

// PrintingIndex returns every stored printing indexed by identity.
func (s *Store) PrintingIndex(ctx context.Context) (Index, error) {
	var printings []CardPrinting
	if err := s.db.WithContext(ctx).Find(&printings).Error; err != nil {
		return nil, fmt.Errorf("failed to load card printings: %w", err)
	}
	return NewIndex(printings), nil
}

// SaveSnapshot stores a snapshot's entries under its source, replacing any
// entries previously stored for that source, in one committed phase.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}

	entries := make([]CollectionEntry, 0, len(snap.Entries))
	var dangling []string
	for _, e := range snap.Entries {
		if e.Printing.ID == 0 {
			dangling = append(dangling, e.Identity().Key())
			continue
		}
		entries = append(entries, CollectionEntry{
			Source:     snap.Source,
			PrintingID: e.Printing.ID,
			Quantity:   e.Quantity,
			Notes:      e.Notes,
			Row:        e.Row,
		})
	}
	if len(dangling) > 0 {
		return NewIntegrityError("entries reference unstored printings", dangling)
	}

	return s.Phase(ctx, "load "+string(snap.Source), func(tx *gorm.DB) error {
		if err := tx.Where("source = ?", snap.Source).Delete(&CollectionEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear %s entries: %w", snap.Source, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(entries, s.batchSize).Error; err != nil {
			return fmt.Errorf("failed to store %s entries: %w", snap.Source, err)
		}
		return nil
	})
}

// LoadSnapshot reads the committed entries of a source back from the store,
// in source row order.
func (s *Store) LoadSnapshot(ctx context.Context, source Source, name string) (*Snapshot, error) {
	var rows []CollectionEntry
	err := s.db.WithContext(ctx).
		Preload("Printing").
		Where("source = ?", source).
		Order("source_row, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s entries: %w", source, err)
	}

	snap := &Snapshot{Source: source, Name: name, Entries: make([]Entry, 0, len(rows))}
	var dangling []string
	for _, row := range rows {
		if row.Printing.ID == 0 {
			dangling = append(dangling, fmt.Sprintf("entry %d -> printing %d", row.ID, row.PrintingID))
			continue
		}
		snap.Entries = append(snap.Entries, Entry{
			Printing: row.Printing,
			Quantity: row.Quantity,
			Notes:    row.Notes,
			Row:      row.Row,
		})
	}
	if len(dangling) > 0 {
		return nil, NewIntegrityError("dangling collection entries", dangling)
	}
	return snap, nil
}

// countEntries returns the number of stored entries of the given sources, or
// of every source when none is given.
func countEntries(db *gorm.DB, sources ...Source) (int64, error) {
	var n int64
	q := db.Model(&CollectionEntry{})
	if len(sources) > 0 {
		q = q.Where("source IN ?", sources)
	}
	err := q.Count(&n).Error
	return n, err
}
