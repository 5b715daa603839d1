// Package dbtest builds small SQLite fixture databases for tests.
package dbtest

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Artists is the fixture schema: two tables, five artists.
const Artists = `
CREATE TABLE artists (
    ArtistId INTEGER PRIMARY KEY,
    Name     TEXT NOT NULL
);
CREATE TABLE albums (
    AlbumId  INTEGER PRIMARY KEY,
    Title    TEXT NOT NULL,
    ArtistId INTEGER NOT NULL REFERENCES artists(ArtistId)
);
INSERT INTO artists (ArtistId, Name) VALUES
    (1, 'AC/DC'),
    (2, 'Accept'),
    (3, 'Aerosmith'),
    (4, 'Alanis Morissette'),
    (5, 'Alice In Chains');
INSERT INTO albums (AlbumId, Title, ArtistId) VALUES
    (1, 'For Those About To Rock We Salute You', 1),
    (2, 'Balls to the Wall', 2),
    (3, 'Restless and Wild', 2);
`

// NewFile writes a database file built from the given statements into a
// temp dir and returns its path.
func NewFile(t *testing.T, statements string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("creating fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(statements); err != nil {
		t.Fatalf("seeding fixture db: %v", err)
	}
	return path
}

// NewFileNamed is NewFile with a chosen file name. The file is seeded
// under a plain name and then renamed, so any characters are allowed.
func NewFileNamed(t *testing.T, name, statements string) string {
	t.Helper()
	seeded := NewFile(t, statements)
	path := filepath.Join(filepath.Dir(seeded), name)
	if err := os.Rename(seeded, path); err != nil {
		t.Fatalf("renaming fixture db: %v", err)
	}
	return path
}
