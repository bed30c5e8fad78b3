package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

const columnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
`

// ValidateSchema verifies that every required table and column exists, so a
// missing migration surfaces at startup instead of at request time.
func (c *Connection) ValidateSchema(ctx context.Context, required map[string][]string) error {
	for table, columns := range required {
		var present []string

		if err := c.Read.SelectContext(ctx, &present, columnsQuery, table); err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", table, err)
		}

		if len(present) == 0 {
			return fmt.Errorf("required table %s is missing, run migrations first", table)
		}

		for _, column := range columns {
			if !slices.Contains(present, column) {
				return fmt.Errorf("required column %s.%s is missing, run migrations first", table, column)
			}
		}

		log.Debug().Str("table", table).Int("columns", len(columns)).Msg("Schema check passed")
	}

	return nil
}
