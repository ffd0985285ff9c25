package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{sql: `SELECT * FROM "parking_spots" WHERE id = ?`, want: "SELECT"},
		{sql: `INSERT INTO "parking_spots" ("id") VALUES (?) ON CONFLICT DO NOTHING`, want: "INSERT"},
		{sql: `WITH recent AS (SELECT 1) UPDATE parking_spots SET block = ?`, want: "SELECT"},
		{sql: `DELETE FROM "parking_spots" WHERE id = ?`, want: "DELETE"},
		{sql: ``, want: "UNKNOWN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, operationFromSQL(tc.sql), tc.sql)
	}
}
