package validator

import (
	"fmt"

	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/snomed"
)

// Rows validates every row of one loaded table against its family's field
// constraints. A failing row is logged with the offending values; with safe
// set, processing continues and the row stays in the table untouched.
// Without safe, the first failure aborts the run.
func Rows[T snomed.Row](log *logging.Logger, family snomed.Family, rows []T, safe bool) error {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			log.Warn("row validation failed", "family", family, "row", row, "error", err)
			if !safe {
				return fmt.Errorf("validating %s row: %w", family, err)
			}
		}
	}
	return nil
}
