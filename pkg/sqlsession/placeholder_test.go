package sqlsession

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sllt/sqlsession/pkg/sqlsession/dsn"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		desc    string
		dialect dsn.Dialect
		query   string
		want    string
		count   int
	}{
		{"no placeholders", dsn.MySQL, "SELECT 1", "SELECT 1", 0},
		{"mysql untouched", dsn.MySQL, "UPDATE t SET x = ? WHERE x = ?", "UPDATE t SET x = ? WHERE x = ?", 2},
		{"postgres numbered", dsn.Postgres, "UPDATE t SET x = ? WHERE x = ?", "UPDATE t SET x = $1 WHERE x = $2", 2},
		{"string literal", dsn.SQLite, "SELECT '?' , x FROM t WHERE y = ?", "SELECT '?' , x FROM t WHERE y = ?", 1},
		{"doubled quote", dsn.Postgres, "SELECT 'it''s ?' WHERE a = ?", "SELECT 'it''s ?' WHERE a = $1", 1},
		{"mysql backslash escape", dsn.MySQL, `SELECT 'a\'?' WHERE a = ?`, `SELECT 'a\'?' WHERE a = ?`, 1},
		{"quoted identifier", dsn.Postgres, `SELECT "w?" FROM t WHERE a = ?`, `SELECT "w?" FROM t WHERE a = $1`, 1},
		{"backticks", dsn.MySQL, "SELECT `w?` FROM t WHERE a = ?", "SELECT `w?` FROM t WHERE a = ?", 1},
		{"line comment", dsn.Postgres, "SELECT a -- why?\nFROM t WHERE a = ?", "SELECT a -- why?\nFROM t WHERE a = $1", 1},
		{"hash comment mysql", dsn.MySQL, "SELECT a # why?\nFROM t WHERE a = ?", "SELECT a # why?\nFROM t WHERE a = ?", 1},
		{"block comment", dsn.Postgres, "SELECT /* ? */ a FROM t WHERE a = ?", "SELECT /* ? */ a FROM t WHERE a = $1", 1},
		{"dollar quoted", dsn.Postgres, "SELECT $tag$ ? $tag$, ?", "SELECT $tag$ ? $tag$, $1", 1},
		{"empty dollar tag", dsn.Postgres, "SELECT $$?$$ WHERE a = ?", "SELECT $$?$$ WHERE a = $1", 1},
		{"escape string", dsn.Postgres, `SELECT E'it\'s ?' , ?`, `SELECT E'it\'s ?' , $1`, 1},
		{"lowercase escape string", dsn.Postgres, `SELECT e'\'?' WHERE a = ?`, `SELECT e'\'?' WHERE a = $1`, 1},
		{"identifier ending in e", dsn.Postgres, `SELECT name'\' WHERE a = ?`, `SELECT name'\' WHERE a = $1`, 1},
		{"standard string keeps backslash", dsn.Postgres, `SELECT '\' , ?`, `SELECT '\' , $1`, 1},
		{"sqlite brackets", dsn.SQLite, "INSERT INTO [w?] ([c?]) VALUES (?)", "INSERT INTO [w?] ([c?]) VALUES (?)", 1},
		{"brackets outside sqlite", dsn.Postgres, "SELECT a[?] FROM t", "SELECT a[$1] FROM t", 1},
		{"numbered placeholders are not counted", dsn.Postgres, "SELECT $1 || $2", "SELECT $1 || $2", 0},
		{"unterminated literal", dsn.SQLite, "SELECT '?", "SELECT '?", 0},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got, n := rebind(tc.query, tc.dialect)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.count, n)
		})
	}
}
