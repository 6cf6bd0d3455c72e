package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sllt/sqlsession/pkg/sqlsession"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	app := newApp()
	app.Writer = &buf

	err := app.Run(context.Background(), append([]string{"sqlsession", "--log-level", "FATAL"}, args...))

	return buf.String(), err
}

func TestApp_ExecAndQuery(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "cli.db")

	_, err := runApp(t, "--target", target, "exec", "CREATE TABLE t (id INTEGER PRIMARY KEY, x INTEGER, note TEXT)")
	require.NoError(t, err)

	out, err := runApp(t, "--target", target, "exec", "--last-id", "INSERT INTO t(x, note) VALUES (?, ?)", "int:42", "hello")
	require.NoError(t, err)
	assert.Equal(t, "1 row(s) affected\nlast insert id: 1\n", out)

	out, err = runApp(t, "--target", target, "query", "SELECT x, note FROM t WHERE x = ?", "int:42")
	require.NoError(t, err)
	assert.Contains(t, out, "x   note")
	assert.Contains(t, out, "42  hello")
	assert.Contains(t, out, "(1 row(s))")
}

func TestApp_ExecRollback(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "cli.db")

	_, err := runApp(t, "--target", target, "exec", "CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	out, err := runApp(t, "--target", target, "exec", "--rollback", "INSERT INTO t(x) VALUES (?)", "int:1")
	require.NoError(t, err)
	assert.Equal(t, "1 row(s) affected\n", out)

	out, err = runApp(t, "--target", target, "query", "SELECT x FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, "(0 row(s))")
}

func TestApp_Metrics(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "cli.db")

	out, err := runApp(t, "--target", target, "--metrics", "exec", "CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	assert.Contains(t, out, "0 row(s) affected\n")
	assert.Contains(t, out, "# TYPE app_sql_stats histogram")
	assert.Contains(t, out, `type="CREATE"`)
	assert.Contains(t, out, "app_sql_open_sessions{")
}

func TestApp_Errors(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "cli.db")

	_, err := runApp(t, "--target", target, "exec")
	require.ErrorIs(t, err, errMissingStatement)

	_, err = runApp(t, "--target", target, "exec", "SELECT ?", "int:x")
	require.Error(t, err)

	_, err = runApp(t, "--target", target, "query", "SELECT ?, ?", "int:1")
	require.ErrorIs(t, err, sqlsession.ErrPreparation)

	_, err = runApp(t, "--target", "oracle:host=db", "ping")
	require.ErrorIs(t, err, sqlsession.ErrConnection)
}

func TestApp_PingFromConfig(t *testing.T) {
	t.Setenv("DB_TARGET", "")
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "env.db"))

	out, err := runApp(t, "--config-dir", t.TempDir(), "ping")

	require.NoError(t, err)
	assert.Contains(t, out, "connected to sqlite")
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		raw  string
		want sqlsession.Param
	}{
		{"null", sqlsession.Null()},
		{"null:", sqlsession.Null()},
		{"plain", sqlsession.Text("plain")},
		{"text:int:1", sqlsession.Text("int:1")},
		{"int:-7", sqlsession.Int(-7)},
		{"float:2.5", sqlsession.Float(2.5)},
		{"bool:true", sqlsession.Bool(true)},
		{"blob:00ff", sqlsession.Blob([]byte{0x00, 0xff})},
		{"http://example.com", sqlsession.Text("http://example.com")},
	}

	for i, tc := range tests {
		got, err := parseParam(tc.raw)

		require.NoError(t, err, "TEST[%d] failed", i)
		assert.Equal(t, tc.want, got, "TEST[%d] failed", i)
	}
}

func TestParseParam_Invalid(t *testing.T) {
	for _, raw := range []string{"int:x", "float:y", "bool:maybe", "blob:zz"} {
		_, err := parseParam(raw)

		assert.Error(t, err, raw)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "12", formatValue(int64(12)))
}
