package etl

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// stageBatchSize bounds rows per INSERT statement when filling staging.
const stageBatchSize = 1000

// Loader bridges normalized chunks into a staging table and merges them
// into the target with upsert semantics.
type Loader struct {
	DB *gorm.DB
}

// MergeSpec describes one staging-to-target merge.
type MergeSpec struct {
	StagingTable    string
	TargetTable     string
	InsertColumns   []string
	ConflictColumns []string
	// ConflictExprs overrides the plain conflict columns in both the
	// duplicate partition and the ON CONFLICT target, for NULL-safe
	// matching against an expression unique index (COALESCE(col, '')).
	ConflictExprs []string
}

func quoteIdent(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func quoteAll(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = quoteIdent(col)
	}
	return out
}

// Stage atomically replaces the staging table's contents with the batch.
// Clearing first means a half-loaded batch from a previous failed attempt
// never coexists with the new one; any failure rolls the whole load back.
func (l *Loader) Stage(table string, columns []string, rows [][]any) error {
	return l.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + quoteIdent(table)).Error; err != nil {
			return err
		}

		for start := 0; start < len(rows); start += stageBatchSize {
			end := min(start+stageBatchSize, len(rows))
			batch := make([]map[string]any, 0, end-start)
			for _, row := range rows[start:end] {
				m := make(map[string]any, len(columns))
				for i, col := range columns {
					m[col] = row[i]
				}
				batch = append(batch, m)
			}
			if err := tx.Table(table).Create(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Merge upserts the staged rows into the target and clears staging, in one
// transaction. Duplicates within the batch are ranked so exactly one row per
// natural key reaches the target; ordering by the full column list keeps the
// surviving row deterministic.
func (l *Loader) Merge(spec MergeSpec) error {
	if len(spec.InsertColumns) == 0 {
		return fmt.Errorf("merge into %s: no insert columns", spec.TargetTable)
	}
	if len(spec.ConflictColumns) == 0 && len(spec.ConflictExprs) == 0 {
		return fmt.Errorf("merge into %s: no conflict key", spec.TargetTable)
	}

	keyExprs := spec.ConflictExprs
	if len(keyExprs) == 0 {
		keyExprs = quoteAll(spec.ConflictColumns)
	}

	insertCols := strings.Join(quoteAll(spec.InsertColumns), ", ")
	keyList := strings.Join(keyExprs, ", ")

	conflictKeys := make(map[string]bool, len(spec.ConflictColumns))
	for _, col := range spec.ConflictColumns {
		conflictKeys[col] = true
	}
	var updates []string
	for _, col := range spec.InsertColumns {
		if conflictKeys[col] {
			continue
		}
		q := quoteIdent(col)
		updates = append(updates, q+" = excluded."+q)
	}
	onConflict := "DO NOTHING"
	if len(updates) > 0 {
		onConflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	upsert := fmt.Sprintf(
		`INSERT INTO %s (%s)
		SELECT %s FROM (
			SELECT %s, ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s, %s) AS dup_rank
			FROM %s
		) ranked
		WHERE dup_rank = 1
		ON CONFLICT (%s) %s`,
		quoteIdent(spec.TargetTable), insertCols,
		insertCols,
		insertCols, keyList, keyList, insertCols,
		quoteIdent(spec.StagingTable),
		keyList, onConflict,
	)

	return l.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(upsert).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM " + quoteIdent(spec.StagingTable)).Error
	})
}

func (l *Loader) ensureStaging(ddl string) error {
	return l.DB.Exec(ddl).Error
}
