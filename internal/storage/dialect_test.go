package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Dialect
		wantErr bool
	}{
		{
			name: "postgres url",
			raw:  "postgres://user:pw@localhost:5432/expenses?sslmode=disable",
			want: Dialect{Name: DialectPostgres, Driver: "postgres", DSN: "postgres://user:pw@localhost:5432/expenses?sslmode=disable"},
		},
		{
			name: "postgresql scheme",
			raw:  "postgresql://localhost/expenses",
			want: Dialect{Name: DialectPostgres, Driver: "postgres", DSN: "postgresql://localhost/expenses"},
		},
		{
			name: "sqlite relative",
			raw:  "sqlite://./data/expenses.db",
			want: Dialect{Name: DialectSQLite, Driver: "sqlite", DSN: "./data/expenses.db"},
		},
		{
			name: "sqlite absolute",
			raw:  "sqlite:///var/lib/expenses.db",
			want: Dialect{Name: DialectSQLite, Driver: "sqlite", DSN: "/var/lib/expenses.db"},
		},
		{
			name: "bare path",
			raw:  "expenses.db",
			want: Dialect{Name: DialectSQLite, Driver: "sqlite", DSN: "expenses.db"},
		},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "sqlite without path", raw: "sqlite://", wantErr: true},
		{name: "unknown scheme", raw: "mysql://localhost/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatabaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE expenses SET title = ?, amount_cents = ? WHERE id = ?"

	sqlite := Dialect{Name: DialectSQLite}
	assert.Equal(t, q, sqlite.Rebind(q))

	pg := Dialect{Name: DialectPostgres}
	assert.Equal(t, "UPDATE expenses SET title = $1, amount_cents = $2 WHERE id = $3", pg.Rebind(q))
}
