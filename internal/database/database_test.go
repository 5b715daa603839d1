package database_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/querychat/internal/database"
	"github.com/michaelbrown/querychat/internal/database/dbtest"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(dbtest.NewFile(t, dbtest.Artists), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMissingFile(t *testing.T) {
	_, err := database.Open(filepath.Join(t.TempDir(), "nope.db"), nil)
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	db := testDB(t)

	schema, err := db.Schema(context.Background())
	require.NoError(t, err)

	require.Len(t, schema, 2)
	assert.Equal(t, database.Table{Name: "artists", Columns: []string{"ArtistId", "Name"}}, schema[0])
	assert.Equal(t, database.Table{Name: "albums", Columns: []string{"AlbumId", "Title", "ArtistId"}}, schema[1])

	want := "Table: artists\nColumns: ArtistId, Name\n" +
		"Table: albums\nColumns: AlbumId, Title, ArtistId\n"
	assert.Equal(t, want, schema.String())
}

func TestSchemaIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := db.Schema(ctx)
	require.NoError(t, err)
	second, err := db.Schema(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
}

func TestSchemaEmptyDatabase(t *testing.T) {
	db, err := database.Open(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	schema, err := db.Schema(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schema)
	assert.Equal(t, "", schema.String())
}

func TestExecuteSelect(t *testing.T) {
	db := testDB(t)
	var audit bytes.Buffer
	db.SetAudit(&audit)

	res, err := db.Execute(context.Background(), "SELECT ArtistId, Name FROM artists ORDER BY ArtistId")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Len())
	assert.Equal(t, []string{"ArtistId", "Name"}, res.Columns)
	assert.Equal(t, map[string]any{"ArtistId": int64(1), "Name": "AC/DC"}, res.Row(0))
	assert.Equal(t, "Alice In Chains", res.Row(4)["Name"])
	assert.Equal(t, "Query: SELECT ArtistId, Name FROM artists ORDER BY ArtistId\n", audit.String())
}

func TestExecuteCount(t *testing.T) {
	db := testDB(t)

	res, err := db.Execute(context.Background(), "SELECT COUNT(*) AS total FROM artists")
	require.NoError(t, err)
	assert.Equal(t, "{\"total\":5}\n", res.String())
}

func TestExecuteKeepsColumnOrder(t *testing.T) {
	db := testDB(t)

	res, err := db.Execute(context.Background(), "SELECT Name, ArtistId FROM artists WHERE ArtistId = 2")
	require.NoError(t, err)
	assert.Equal(t, "{\"Name\":\"Accept\",\"ArtistId\":2}\n", res.String())
}

func TestExecuteNoRows(t *testing.T) {
	db := testDB(t)

	res, err := db.Execute(context.Background(), "SELECT * FROM artists WHERE ArtistId > 100")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, "(0 rows)", res.String())
}

func TestExecuteInvalidSQL(t *testing.T) {
	db := testDB(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "syntax error", query: "SELEKT * FROM artists"},
		{name: "unknown table", query: "SELECT * FROM bands"},
		{name: "unknown column", query: "SELECT Genre FROM artists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := db.Execute(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, res)

			var qe *database.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.query, qe.Query)

			text := database.FormatResult(res, err)
			assert.True(t, strings.HasPrefix(text, "error: "), "got %q", text)
		})
	}
}

func TestExecuteUsableAfterError(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.Execute(ctx, "SELECT * FROM nowhere")
	require.Error(t, err)

	res, err := db.Execute(ctx, "SELECT COUNT(*) FROM albums")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows[0][0])
}

func TestOpenEscapesPath(t *testing.T) {
	for _, name := range []string{"music#1.db", "music?v=2.db", "music%41.db", "my music.db"} {
		t.Run(name, func(t *testing.T) {
			path := dbtest.NewFileNamed(t, name, dbtest.Artists)

			db, err := database.Open(path, nil)
			require.NoError(t, err)
			schema, err := db.Schema(context.Background())
			require.NoError(t, err)
			require.NoError(t, db.Close())
			assert.Len(t, schema, 2)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			require.Len(t, entries, 1, "no other database file is created")
			assert.Equal(t, name, entries[0].Name())
		})
	}
}

func TestExecuteRejectsMultipleStatements(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
	}{
		{name: "select then delete", query: "SELECT COUNT(*) AS n FROM albums; DELETE FROM albums"},
		{name: "two selects", query: "SELECT 1 AS a; SELECT 2 AS b"},
		{name: "after comment", query: "SELECT 1; /* ; */ DELETE FROM albums;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := db.Execute(ctx, tt.query)
			assert.Nil(t, res)
			require.ErrorIs(t, err, database.ErrMultipleStatements)
			var qe *database.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.query, qe.Query)
		})
	}

	res, err := db.Execute(ctx, "SELECT COUNT(*) AS n FROM albums")
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":3}\n", res.String(), "nothing was deleted")
}

func TestExecuteSingleStatementForms(t *testing.T) {
	db := testDB(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "trailing semicolon", query: "SELECT COUNT(*) AS n FROM albums;", want: "{\"n\":3}\n"},
		{name: "semicolon in literal", query: "SELECT 'a;b' AS s", want: "{\"s\":\"a;b\"}\n"},
		{name: "trailing comment", query: "SELECT 1 AS one; -- done;", want: "{\"one\":1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := db.Execute(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.String())
		})
	}
}

func TestExecuteMutatingStatement(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	res, err := db.Execute(ctx, "INSERT INTO artists (ArtistId, Name) VALUES (6, 'Anthrax')")
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)", res.String())

	res, err = db.Execute(ctx, "SELECT COUNT(*) AS total FROM artists")
	require.NoError(t, err)
	assert.Equal(t, "{\"total\":6}\n", res.String())
}

func TestExecuteBlobValues(t *testing.T) {
	db := testDB(t)

	res, err := db.Execute(context.Background(), "SELECT x'ff00' AS raw, CAST('hi' AS BLOB) AS text")
	require.NoError(t, err)
	assert.Equal(t, "{\"raw\":\"x'FF00'\",\"text\":\"hi\"}\n", res.String())
}
