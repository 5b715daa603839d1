package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/querychat/internal/database"
)

var dbPathFlag string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Chat about a SQLite database; the model answers by writing SQL",
	Long: `Start a streaming chat backed by a local SQLite database.

The database schema is read once at startup and given to the model with the
ask_database tool. Queries the model writes are run as-is and their results
are fed back so the model can answer in plain language.

Examples:
  querychat db
  querychat db --db data/Chinook.db --model gpt-4o`,
	RunE: runDB,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description the model receives",
	RunE:  runSchema,
}

func init() {
	dbCmd.Flags().StringVar(&dbPathFlag, "db", "", "SQLite database file (default from config: data/Chinook.db)")
	schemaCmd.Flags().StringVar(&dbPathFlag, "db", "", "SQLite database file (default from config: data/Chinook.db)")
	rootCmd.AddCommand(dbCmd, schemaCmd)
}

func (e *env) openDatabase(ctx context.Context) (*database.DB, database.Schema, error) {
	path := dbPathFlag
	if path == "" {
		path = e.cfg.Database.Path
	}

	db, err := database.Open(path, e.log)
	if err != nil {
		return nil, nil, err
	}

	schema, err := db.Schema(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("loading schema: %w", err)
	}
	return db, schema, nil
}

func runDB(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	db, schema, err := e.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetAudit(e.console.QueryWriter())

	name := strings.TrimSuffix(filepath.Base(db.Path()), filepath.Ext(db.Path()))
	e.console.Printf("Connected to the %s database.\n", name)

	p, err := e.profile("sql")
	if err != nil {
		return err
	}
	model := e.model(p, e.cfg.Model)

	a := e.newAgent(p, model)
	a.SetDatabase(db, schema)
	a.SetSampling(e.temperature(p), 0)

	e.console.Printf("Model: %s | Tables: %d\n", model, len(schema))
	e.console.Printf("Type 'exit' to quit, /help for commands\n\n")

	return e.runSession(a, true, "")
}

func runSchema(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.close()

	db, schema, err := e.openDatabase(context.Background())
	if err != nil {
		return err
	}
	defer db.Close()

	e.console.Text(schema.String())
	return nil
}
