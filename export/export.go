package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uib-ub/snomedct-transform/database"
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/snomed"
)

var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS snomed_concepts (
		concept_id TEXT PRIMARY KEY
	);`,
	`CREATE TABLE IF NOT EXISTS snomed_terms (
		concept_id TEXT NOT NULL,
		term_id TEXT NOT NULL,
		term TEXT NOT NULL,
		language_code TEXT NOT NULL,
		type_id TEXT NOT NULL,
		acceptability_id TEXT NOT NULL,
		acceptability_id_gp TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS snomed_definitions (
		concept_id TEXT NOT NULL,
		definition_id TEXT NOT NULL,
		term TEXT NOT NULL,
		language_code TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS snomed_relations (
		id TEXT NOT NULL,
		active INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		relationship_group TEXT NOT NULL,
		type_id TEXT NOT NULL,
		characteristic_type_id TEXT NOT NULL
	);`,
}

// Run bulk-loads a denormalized dataset into Postgres. Target tables are
// created if missing and replaced wholesale on every export.
func Run(ctx context.Context, log *logging.Logger, data snomed.Data) error {
	pool, err := database.GetPool(ctx)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	for _, ddl := range tableDDL {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("creating export tables: %w", err)
		}
	}

	log.Info("exporting concept ids", "count", len(data.IDs))
	conceptRows := make([][]any, 0, len(data.IDs))
	for _, id := range data.IDs {
		conceptRows = append(conceptRows, []any{id})
	}
	if err := replaceTable(ctx, pool, "snomed_concepts", []string{"concept_id"}, conceptRows); err != nil {
		return err
	}

	log.Info("exporting terms", "count", len(data.Terms))
	termRows := make([][]any, 0, len(data.Terms))
	for _, t := range data.Terms {
		termRows = append(termRows, []any{
			t.ConceptID, t.TermID, t.Term, t.LanguageCode, t.TypeID, t.AcceptabilityID, t.AcceptabilityIDGP,
		})
	}
	termColumns := []string{"concept_id", "term_id", "term", "language_code", "type_id", "acceptability_id", "acceptability_id_gp"}
	if err := replaceTable(ctx, pool, "snomed_terms", termColumns, termRows); err != nil {
		return err
	}

	log.Info("exporting definitions", "count", len(data.Definitions))
	definitionRows := make([][]any, 0, len(data.Definitions))
	for _, d := range data.Definitions {
		definitionRows = append(definitionRows, []any{d.ConceptID, d.DefinitionID, d.Term, d.LanguageCode})
	}
	definitionColumns := []string{"concept_id", "definition_id", "term", "language_code"}
	if err := replaceTable(ctx, pool, "snomed_definitions", definitionColumns, definitionRows); err != nil {
		return err
	}

	log.Info("exporting relations", "count", len(data.Relations))
	relationRows := make([][]any, 0, len(data.Relations))
	for _, r := range data.Relations {
		relationRows = append(relationRows, []any{
			r.ID, r.Active, r.SourceID, r.DestinationID, r.RelationshipGroup, r.TypeID, r.CharacteristicTypeID,
		})
	}
	relationColumns := []string{"id", "active", "source_id", "destination_id", "relationship_group", "type_id", "characteristic_type_id"}
	return replaceTable(ctx, pool, "snomed_relations", relationColumns, relationRows)
}

// replaceTable truncates the target table and copies the rows in within one
// transaction.
func replaceTable(ctx context.Context, pool *pgxpool.Pool, table string, columns []string, rows [][]any) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction for %s: %w", table, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s", table)); err != nil {
		return fmt.Errorf("truncating %s: %w", table, err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copying into %s: %w", table, err)
	}

	return tx.Commit(ctx)
}
