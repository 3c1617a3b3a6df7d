package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunAutoMigratesSQLite(t *testing.T) {
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(db, "sqlite"))
	for _, table := range []string{"clients", "hosting_addons", "custom_fields", "custom_field_values", "invoices", "invoice_items", "activity_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	require.NoError(t, Run(db, "sqlite"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(embeddedMigrations, down)
		assert.NoError(t, err, down)
	}
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil, "sqlite"))
	assert.Error(t, RunMigrations(nil))
}
