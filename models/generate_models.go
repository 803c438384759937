package models

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Query generation and column drift report.

GENERATE_MODELS=true migrates the schema and writes typed query helpers for every
model to ./query using gorm/gen.

GENERATE_COLUMN_REPORT=true lists database columns that no model field maps to,
which usually means a column was added by hand or a field was renamed:

	=== COLUMN MISMATCH REPORT ===
	--- Table: projects ---
	Found 1 columns not accounted for in model:
	  - legacy_slug
*/

// All returns one zero value of every persisted model, in migration order.
func All() []any {
	return []any{&Project{}, &BlogPost{}, &Tool{}, &CVRecord{}}
}

// GenerateModels migrates the schema and emits gorm/gen query code to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Project{}, BlogPost{}, Tool{}, CVRecord{})

	migrateDB := db.Session(&gorm.Session{SkipDefaultTransaction: true})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	g.Execute()
	return nil
}

// TableMismatch is one table's columns that have no backing model field.
type TableMismatch struct {
	Table   string
	Missing bool
	Columns []string
}

// ColumnMismatchReport compares live table columns against the model schemas.
func ColumnMismatchReport(db *gorm.DB) ([]TableMismatch, error) {
	cache := &sync.Map{}
	var report []TableMismatch

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}

		entry := TableMismatch{Table: s.Table}
		if !db.Migrator().HasTable(s.Table) {
			entry.Missing = true
			report = append(report, entry)
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(s.Table)
		if err != nil {
			return nil, fmt.Errorf("columns for %s: %w", s.Table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}
		entry.Columns = findColumnMismatches(dbColumns, s.DBNames)
		report = append(report, entry)
	}

	return report, nil
}

// WriteColumnMismatchReport prints the report in the format shown above.
func WriteColumnMismatchReport(w io.Writer, report []TableMismatch) {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	total := 0
	for _, entry := range report {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", entry.Table)
		switch {
		case entry.Missing:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case len(entry.Columns) > 0:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(entry.Columns))
			for _, col := range entry.Columns {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(entry.Columns)
		default:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)

	return mismatches
}
