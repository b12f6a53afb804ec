package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"inboxai/internal/constants"
)

// The schedules table constrains criteria_type at the database layer. Every
// type the application layer accepts must appear in that constraint, or a
// valid create would pass validation and then die on insert.
func TestScheduleMigrationAllowsEveryCriteriaType(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000002_create_agent_schedules.up.sql"))
	require.NoError(t, err)

	sql := string(raw)
	require.Contains(t, sql, "CHECK")

	for _, criteriaType := range []string{
		constants.CriteriaLast24Hours,
		constants.CriteriaLast7Days,
		constants.CriteriaLatestN,
		constants.CriteriaOldestN,
	} {
		require.Contains(t, sql, "'"+criteriaType+"'", "criteria_type %s missing from CHECK constraint", criteriaType)
	}
}
