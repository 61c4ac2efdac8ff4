//go:build integration

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/zer0-graph-engine/db"
)

var TESTONLY_Config = db.Config{
	PGHost:     "localhost",
	PGPort:     5432,
	PGUser:     "zer0",
	PGPassword: "example",
	PGDatabase: "zer0graph",
}

func TESTONLY_SetupAndCleanup(t *testing.T) *PostgresDB {
	assert := assert.New(t)
	pg, err := NewPostgresDB(TESTONLY_Config)
	assert.NoError(err)
	t.Cleanup(func() {
		sqlDB, err := pg.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	pg.db.Exec(`DROP TABLE IF EXISTS relationships CASCADE`)
	pg.db.Exec(`DROP TABLE IF EXISTS votes CASCADE`)
	pg.db.Exec(`DROP TABLE IF EXISTS nodes CASCADE`)
	pg, err = NewPostgresDB(TESTONLY_Config)
	assert.NoError(err)
	return pg
}
