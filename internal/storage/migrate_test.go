package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 3)

	assert.Equal(t, "0001_identities", ms[0].Version)
	assert.Equal(t, "0002_submissions", ms[1].Version)
	assert.Equal(t, "0003_change_log", ms[2].Version)
	for _, m := range ms {
		assert.NotEmpty(t, m.SQL)
	}
}

func TestSubmissionsSchemaKeepsOneRecordPerPerson(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	assert.Contains(t, ms[1].SQL, "identity_key      TEXT NOT NULL UNIQUE")
}
