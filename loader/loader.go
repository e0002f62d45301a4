package loader

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/uib-ub/snomedct-transform/config"
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/normalizer"
	"github.com/uib-ub/snomedct-transform/snomed"
	"github.com/uib-ub/snomedct-transform/validator"
)

// Loader discovers and parses the snapshot TSV files of the release packages.
type Loader struct {
	cfg config.Config
	log *logging.Logger
}

func New(cfg config.Config, log *logging.Logger) *Loader {
	return &Loader{cfg: cfg, log: log}
}

// Load reads all configured tables into a raw dataset. Normalization and,
// when enabled, row validation run per table as it is loaded.
func (l *Loader) Load() (*snomed.Dataset, error) {
	l.log.Info("load raw dataset from files")

	if _, err := os.Stat(l.cfg.InputDir); err != nil {
		l.log.Error("input directory not found", "dir", l.cfg.InputDir)
		return nil, fmt.Errorf("input directory %q: %w", l.cfg.InputDir, err)
	}

	filenames, err := l.discover()
	if err != nil {
		return nil, err
	}
	if len(filenames) == 0 {
		l.log.Error("no release packages found in input dir", "dir", l.cfg.InputDir)
		return nil, fmt.Errorf("no snapshot files under %q", l.cfg.InputDir)
	}

	ds := &snomed.Dataset{}
	for _, spec := range l.cfg.Tables {
		if err := l.loadTable(spec, filenames, ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// discover collects the snapshot text files of every release package under
// the input directory.
func (l *Loader) discover() ([]string, error) {
	var filenames []string
	err := filepath.WalkDir(l.cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txt") {
			return nil
		}
		if strings.Contains(path, "Snapshot") {
			filenames = append(filenames, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning input dir: %w", err)
	}
	return filenames, nil
}

func (l *Loader) loadTable(spec config.TableSpec, filenames []string, ds *snomed.Dataset) error {
	l.log.Debug("load table", "pattern", spec.Pattern)

	var matches []string
	for _, f := range filenames {
		if strings.Contains(filepath.Base(f), spec.Pattern) {
			matches = append(matches, f)
		}
	}

	// A pattern matching nothing is only logged here; the open below fails
	// on the empty filename. Matching more than one file aborts at once.
	if len(matches) == 0 {
		l.log.Error("no match for table pattern", "pattern", spec.Pattern)
	}
	if len(matches) > 1 {
		l.log.Error("multiple matches for table pattern", "pattern", spec.Pattern, "matches", matches)
		return fmt.Errorf("table pattern %q matches %d files", spec.Pattern, len(matches))
	}
	var filename string
	if len(matches) == 1 {
		filename = matches[0]
	}

	rows, err := readTSV(filename, spec.Family.Columns())
	if err != nil {
		return fmt.Errorf("loading table %q: %w", spec.Pattern, err)
	}

	if rules := l.cfg.ReplaceValues[spec.Family]; len(rules) > 0 {
		l.log.Debug("replacing values in table", "pattern", spec.Pattern)
		normalizer.Apply(rules, rows)
	}

	if err := l.assign(spec, rows, ds); err != nil {
		return fmt.Errorf("loading table %q: %w", spec.Pattern, err)
	}
	return nil
}

// assign coerces the raw rows into the typed slice for the table's dataset
// slot, validating when configured.
func (l *Loader) assign(spec config.TableSpec, rows []map[string]string, ds *snomed.Dataset) error {
	switch spec.Family {
	case snomed.FamilyConcept:
		table, err := buildRows(rows, snomed.NewConcept)
		if err != nil {
			return err
		}
		if err := validateTable(l, spec, table); err != nil {
			return err
		}
		switch spec.Key {
		case "concept_no":
			ds.ConceptNO = table
		case "concept_int":
			ds.ConceptINT = table
		default:
			return fmt.Errorf("unknown concept table key %q", spec.Key)
		}

	case snomed.FamilyDescription, snomed.FamilyDefinition:
		table, err := buildRows(rows, snomed.NewDescription)
		if err != nil {
			return err
		}
		if err := validateTable(l, spec, table); err != nil {
			return err
		}
		switch spec.Key {
		case "description_no_no":
			ds.DescriptionNoNO = table
		case "description_en_no":
			ds.DescriptionEnNO = table
		case "description_en_int":
			ds.DescriptionEnINT = table
		case "definition_no_no":
			ds.DefinitionNoNO = table
		case "definition_en_no":
			ds.DefinitionEnNO = table
		case "definition_en_int":
			ds.DefinitionEnINT = table
		default:
			return fmt.Errorf("unknown description table key %q", spec.Key)
		}

	case snomed.FamilyLanguage:
		table, err := buildRows(rows, snomed.NewLanguage)
		if err != nil {
			return err
		}
		if err := validateTable(l, spec, table); err != nil {
			return err
		}
		switch spec.Key {
		case "language_nb_no":
			ds.LanguageNbNO = table
		case "language_nb_gp_no":
			ds.LanguageNbGpNO = table
		case "language_nn_no":
			ds.LanguageNnNO = table
		case "language_nn_gp_no":
			ds.LanguageNnGpNO = table
		case "language_en_no":
			ds.LanguageEnNO = table
		case "language_en_int":
			ds.LanguageEnINT = table
		default:
			return fmt.Errorf("unknown language table key %q", spec.Key)
		}

	case snomed.FamilyRelationship:
		table, err := buildRows(rows, snomed.NewRelationship)
		if err != nil {
			return err
		}
		if err := validateTable(l, spec, table); err != nil {
			return err
		}
		switch spec.Key {
		case "relationship_no":
			ds.RelationshipNO = table
		case "relationship_int":
			ds.RelationshipINT = table
		default:
			return fmt.Errorf("unknown relationship table key %q", spec.Key)
		}

	default:
		return fmt.Errorf("unknown table family %q", spec.Family)
	}
	return nil
}

func validateTable[T snomed.Row](l *Loader, spec config.TableSpec, rows []T) error {
	if !l.cfg.Validate {
		return nil
	}
	l.log.Info("validating table", "pattern", spec.Pattern, "rows", len(rows))
	return validator.Rows(l.log, spec.Family, rows, l.cfg.SafeValidation)
}

func buildRows[T any](rows []map[string]string, build func(map[string]string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		typed, err := build(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, typed)
	}
	return out, nil
}

// readTSV parses a snapshot file, keeping only the wanted columns. The files
// are unquoted tab-separated text with a header line; empty fields stay
// empty strings.
func readTSV(filename string, columns []string) ([]map[string]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("file %q is empty", filename)
	}
	header := strings.Split(scanner.Text(), "\t")

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("column %q not found in %q", c, filename)
		}
	}

	var rows []map[string]string
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		row := make(map[string]string, len(columns))
		for _, c := range columns {
			i := index[c]
			if i >= len(fields) {
				return nil, fmt.Errorf("row %d in %q has %d fields, want at least %d", len(rows)+1, filename, len(fields), i+1)
			}
			row[c] = fields[i]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", filename, err)
	}
	return rows, nil
}
