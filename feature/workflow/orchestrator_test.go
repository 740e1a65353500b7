package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"collection-manager/core/collection"
	"collection-manager/core/database"
	"collection-manager/core/reconcile"
	"collection-manager/core/storage"
	"collection-manager/feature/backup"
	"collection-manager/feature/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const m21Catalog = `{"data": {"code": "M21", "name": "Core Set 2021", "cards": [
  {"name": "Alpine Watchdog", "number": "2", "finishes": ["nonfoil", "foil"]},
  {"name": "Basri's Solidarity", "number": "10", "finishes": ["nonfoil"]},
  {"name": "Teferi, Master of Time", "number": "1", "finishes": ["nonfoil", "foil", "etched"]}
]}}`

const m21CatalogWithout10 = `{"data": {"code": "M21", "name": "Core Set 2021", "cards": [
  {"name": "Alpine Watchdog", "number": "2", "finishes": ["nonfoil", "foil"]},
  {"name": "Teferi, Master of Time", "number": "1", "finishes": ["nonfoil", "foil", "etched"]}
]}}`

const leaCatalog = `code: LEA
name: Limited Edition Alpha
cards:
  - name: Lightning Bolt
    number: 161
`

type env struct {
	t     *testing.T
	data  string
	sheet string
	dir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "catalog")
	require.NoError(t, os.Mkdir(data, 0o755))
	e := &env{t: t, data: data, sheet: filepath.Join(dir, "collection.xlsx"), dir: dir}
	e.writeCatalog(m21Catalog)
	require.NoError(t, os.WriteFile(filepath.Join(data, "lea.yaml"), []byte(leaCatalog), 0o644))
	return e
}

func (e *env) writeCatalog(m21 string) {
	require.NoError(e.t, os.WriteFile(filepath.Join(e.data, "M21.json"), []byte(m21), 0o644))
}

func (e *env) file(name, content string) string {
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *env) orchestrator(debug bool) *Orchestrator {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = database.Close(db) })

	store := collection.NewStore(db, nil)
	loader := catalog.NewLoader(catalog.Config{DataPath: e.data}, nil)
	backups := backup.NewManager(backup.Config{}, nil, storage.Config{}, nil)
	return NewOrchestrator(store, loader, backups, nil, debug)
}

func (e *env) run(op reconcile.Operation, file string) (*Report, error) {
	return e.orchestrator(false).Run(context.Background(), Request{
		RunID:       "test",
		Operation:   op,
		Spreadsheet: e.sheet,
		File:        file,
	})
}

func (e *env) mustRun(op reconcile.Operation, file string) *Report {
	report, err := e.run(op, file)
	require.NoError(e.t, err)
	require.Equal(e.t, StateWritten, report.State)
	return report
}

func (e *env) sheetBytes() []byte {
	data, err := os.ReadFile(e.sheet)
	require.NoError(e.t, err)
	return data
}

func (e *env) sheetRows() [][]string {
	f, err := excelize.OpenFile(e.sheet)
	require.NoError(e.t, err)
	defer f.Close()
	rows, err := f.GetRows("Collection")
	require.NoError(e.t, err)
	return rows
}

func tuples(m *reconcile.MergedCollection) []string {
	out := make([]string, 0, m.Len())
	for _, entry := range m.Entries {
		out = append(out, fmt.Sprintf("%s=%d:%s", entry.Identity().Key(), entry.Quantity, entry.Notes))
	}
	return out
}

func TestCreateBaseline(t *testing.T) {
	e := newEnv(t)
	report := e.mustRun(reconcile.OperationCreate, "")

	assert.Equal(t, []State{StateIdle, StateCatalogLoaded, StateMerged, StateWritten}, report.History)
	assert.Equal(t, e.sheet, report.Target)
	assert.Empty(t, report.Backup)

	rows := e.sheetRows()
	require.Len(t, rows, 8)
	assert.Equal(t, collection.Columns, rows[0])

	var keys []string
	for _, row := range rows[1:] {
		require.GreaterOrEqual(t, len(row), 5)
		assert.Equal(t, "0", row[4])
		keys = append(keys, row[0]+"|"+row[1]+"|"+row[2])
	}
	assert.Equal(t, []string{
		"LEA|161|nonfoil",
		"M21|1|nonfoil",
		"M21|1|foil",
		"M21|1|etched",
		"M21|2|nonfoil",
		"M21|2|foil",
		"M21|10|nonfoil",
	}, keys)
	assert.Equal(t, "Teferi, Master of Time", rows[2][3])
}

func TestUpdateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	e.mustRun(reconcile.OperationImport, e.file("in.csv", "Set,Number,Finish,Quantity,Notes\nM21,2,foil,3,binder\n"))

	e.mustRun(reconcile.OperationUpdate, "")
	first := e.sheetBytes()
	report := e.mustRun(reconcile.OperationUpdate, "")
	second := e.sheetBytes()

	assert.True(t, bytes.Equal(first, second), "repeated updates must be byte-identical")
	assert.Equal(t, []State{StateIdle, StateCatalogLoaded, StatePriorLoaded, StateMerged, StateWritten}, report.History)
	assert.Equal(t, 7, report.Summary.Kept)

	matches, err := filepath.Glob(filepath.Join(e.dir, "collection.backup-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1, "only the import keeps a backup")
}

func TestExportImportRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	e.mustRun(reconcile.OperationImport, e.file("seed.csv",
		"Set,Number,Finish,Quantity,Notes\nM21,2,foil,3,binder\nLEA,161,,1,\nM21,10,,0,want\n"))

	original := e.mustRun(reconcile.OperationUpdate, "")
	originalSheet := e.sheetBytes()

	out := filepath.Join(e.dir, "export.csv")
	exported := e.mustRun(reconcile.OperationExport, out)
	assert.Equal(t, out, exported.Target)
	assert.Equal(t, 3, exported.Plan.Collection.Len(), "export writes recorded entries only")

	csvData, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"Set,Number,Finish,Name,Quantity,Notes\n"+
			"LEA,161,nonfoil,Lightning Bolt,1,\n"+
			"M21,2,foil,Alpine Watchdog,3,binder\n"+
			"M21,10,nonfoil,Basri's Solidarity,0,want\n",
		string(csvData))

	reimported := e.mustRun(reconcile.OperationImport, out)
	assert.Equal(t, tuples(original.Plan.Collection), tuples(reimported.Plan.Collection))
	assert.True(t, bytes.Equal(originalSheet, e.sheetBytes()))
}

func TestImportOverwritesPrior(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	e.mustRun(reconcile.OperationImport, e.file("first.csv",
		"Set,Number,Finish,Quantity,Notes\nM21,2,foil,3,binder\nLEA,161,,4,signed\n"))
	before := e.sheetBytes()

	report := e.mustRun(reconcile.OperationImport, e.file("second.csv",
		"Set,Number,Finish,Quantity\nM21,2,foil,5\n"))

	for _, entry := range report.Plan.Collection.Entries {
		assert.NotEqual(t, reconcile.OriginPrior, entry.Origin)
	}
	assert.Equal(t, 1, report.Summary.Replaced)
	assert.Equal(t, 6, report.Summary.Dropped)
	assert.Equal(t, 5, report.Plan.Collection.TotalQuantity())

	rows := e.sheetRows()
	assert.Equal(t, []string{"LEA", "161", "nonfoil", "Lightning Bolt", "0"}, rows[1])

	require.NotEmpty(t, report.Backup)
	backupData, err := os.ReadFile(report.Backup)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, backupData), "backup holds the overwritten spreadsheet")
}

func TestImportWithoutPriorSpreadsheet(t *testing.T) {
	e := newEnv(t)
	report := e.mustRun(reconcile.OperationImport, e.file("in.csv", "Set,Number,Quantity\nLEA,161,2\n"))

	assert.Empty(t, report.Backup)
	assert.Equal(t, 1, report.Summary.Imported)
	assert.Len(t, e.sheetRows(), 8)
}

func TestImportReportsEveryUnknownRow(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	before := e.sheetBytes()

	report, err := e.run(reconcile.OperationImport, e.file("bad.csv",
		"Set,Number,Quantity\nXX1,1,1\nM21,2,1\nXX2,2,1\nXX3,3,1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrResolution))
	for _, key := range []string{"XX1|1|nonfoil", "XX2|2|nonfoil", "XX3|3|nonfoil"} {
		assert.Contains(t, err.Error(), key)
	}

	assert.Equal(t, StateFailed, report.State)
	assert.Equal(t, []State{StateIdle, StateCatalogLoaded, StateFailed}, report.History)
	assert.True(t, bytes.Equal(before, e.sheetBytes()), "spreadsheet must not change")

	matches, err := filepath.Glob(filepath.Join(e.dir, "collection.backup-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpdateFailsWhenCatalogDropsOwnedPrinting(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	e.mustRun(reconcile.OperationImport, e.file("in.csv", "Set,Number,Quantity\nM21,10,2\n"))
	before := e.sheetBytes()

	e.writeCatalog(m21CatalogWithout10)
	report, err := e.run(reconcile.OperationUpdate, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrUnresolved))
	assert.Contains(t, err.Error(), "M21|10|nonfoil")
	assert.Equal(t, StateFailed, report.State)
	assert.True(t, bytes.Equal(before, e.sheetBytes()), "spreadsheet must not change")
}

func TestUpdateFailsWhenCatalogDropsBaselinePrinting(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	before := e.sheetBytes()

	e.writeCatalog(m21CatalogWithout10)
	report, err := e.run(reconcile.OperationUpdate, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrUnresolved))
	assert.Contains(t, err.Error(), "M21|10|nonfoil")
	assert.Equal(t, StateFailed, report.State)
	assert.True(t, bytes.Equal(before, e.sheetBytes()), "spreadsheet must not change")
}

func TestImportReportsUnknownRowsWithoutQuantity(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	before := e.sheetBytes()

	_, err := e.run(reconcile.OperationImport, e.file("zero.csv",
		"Set,Number,Quantity\nXX1,1,0\nM21,2,1\nXX2,2,\nXX3,3,0\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, collection.ErrUnresolved))
	for _, key := range []string{"XX1|1|nonfoil", "XX2|2|nonfoil", "XX3|3|nonfoil"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.True(t, bytes.Equal(before, e.sheetBytes()), "spreadsheet must not change")
}

func TestFailures(t *testing.T) {
	t.Run("MissingCatalog", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, os.RemoveAll(e.data))
		require.NoError(t, os.Mkdir(e.data, 0o755))

		report, err := e.run(reconcile.OperationCreate, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, collection.ErrCatalog))
		assert.Equal(t, []State{StateIdle, StateFailed}, report.History)
		assert.NoFileExists(t, e.sheet)
	})

	t.Run("UpdateWithoutSpreadsheet", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.run(reconcile.OperationUpdate, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.orchestrator(false).Run(context.Background(), Request{
			Operation: reconcile.OperationExport, Spreadsheet: e.sheet, File: "out.ods", Format: "ods",
		})
		assert.ErrorContains(t, err, "unsupported format")
	})

	t.Run("SpreadsheetExtension", func(t *testing.T) {
		e := newEnv(t)
		sheet := filepath.Join(e.dir, "collection.csv")
		report, err := e.orchestrator(false).Run(context.Background(), Request{
			Operation: reconcile.OperationCreate, Spreadsheet: sheet,
		})
		assert.ErrorContains(t, err, "must have the .xlsx extension")
		assert.Equal(t, []State{StateIdle, StateFailed}, report.History)
		assert.NoFileExists(t, sheet)
	})

	t.Run("RunsOnce", func(t *testing.T) {
		e := newEnv(t)
		o := e.orchestrator(false)
		_, err := o.Run(context.Background(), Request{Operation: reconcile.OperationCreate, Spreadsheet: e.sheet})
		require.NoError(t, err)
		_, err = o.Run(context.Background(), Request{Operation: reconcile.OperationCreate, Spreadsheet: e.sheet})
		assert.Error(t, err)
	})
}

// failingAdapter writes part of its output and then fails.
type failingAdapter struct {
	reconcile.Adapter
}

func (failingAdapter) Name() string { return "csv" }

func (failingAdapter) Extension() string { return ".csv" }

func (failingAdapter) WriteCollection(_ context.Context, w io.Writer, _ *reconcile.MergedCollection) error {
	_, _ = io.WriteString(w, "Set,Num")
	return errors.New("disk full")
}

func TestExportTabSeparated(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	e.mustRun(reconcile.OperationImport, e.file("in.csv", "Set,Number,Quantity\nLEA,161,2\n"))

	out := filepath.Join(e.dir, "owned.tsv")
	report, err := e.orchestrator(false).Run(context.Background(), Request{
		Operation: reconcile.OperationExport, Spreadsheet: e.sheet, File: out, Format: "tsv",
	})
	require.NoError(t, err)
	assert.Equal(t, out, report.Target)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Set\tNumber\tFinish\tName\tQuantity\tNotes\nLEA\t161\tnonfoil\tLightning Bolt\t2\t\n", string(data))
}

func TestFailedWriteKeepsTarget(t *testing.T) {
	e := newEnv(t)
	e.mustRun(reconcile.OperationCreate, "")
	out := e.file("export.csv", "previous export\n")

	o := e.orchestrator(true)
	o.RegisterFormat(failingAdapter{})
	report, err := o.Run(context.Background(), Request{
		Operation: reconcile.OperationExport, Spreadsheet: e.sheet, File: out,
	})
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, []State{StateIdle, StateCatalogLoaded, StatePriorLoaded, StateMerged, StateFailed}, report.History)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous export\n", string(data))

	matches, err := filepath.Glob(filepath.Join(e.dir, "export.backup-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "transient backup is cleaned up")

	var phases []string
	for _, d := range report.Durations {
		phases = append(phases, d.Phase)
	}
	assert.Equal(t, []string{"prepare", "catalog read", "catalog commit", "read prior", "merge", "write"}, phases)
}
