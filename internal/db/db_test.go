package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/0001_init.sql", names[0])
}

func TestInitMigration_SeedsRoleGroups(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	sql := string(b)

	assert.Contains(t, sql, "'Manager'")
	assert.Contains(t, sql, "'Delivery crew'")
	assert.True(t, strings.Contains(sql, "UNIQUE (user_id, menuitem_id)"))
	assert.True(t, strings.Contains(sql, "UNIQUE (order_id, menuitem_id)"))
}
