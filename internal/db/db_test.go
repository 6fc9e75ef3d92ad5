package db

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateULID(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()

	assert.Len(t, a, ulid.EncodedSize)
	assert.NotEqual(t, a, b)

	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
}

func TestNewRejectsBadIdleTime(t *testing.T) {
	_, err := New(Config{Addr: "postgres://localhost/none?sslmode=disable", MaxIdleTime: "fifteen"})
	assert.ErrorContains(t, err, "invalid db max idle time")
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := migrationSource().FindMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 1)

	m := migrations[0]
	assert.Equal(t, "0001_create_orders.sql", m.Id)
	require.NotEmpty(t, m.Up)
	require.NotEmpty(t, m.Down)
	assert.Contains(t, m.Up[0], "CREATE TABLE IF NOT EXISTS orders")
	assert.Contains(t, m.Down[0], "DROP TABLE IF EXISTS payments")
}
