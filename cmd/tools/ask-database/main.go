// Command querychat-tool-ask-database serves the ask_database tool over
// MCP stdio, backed by the same SQLite database as `querychat db`.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/michaelbrown/querychat/internal/agent"
	"github.com/michaelbrown/querychat/internal/config"
	"github.com/michaelbrown/querychat/internal/database"
	"github.com/michaelbrown/querychat/internal/logging"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database file (default from config)")
	verbose := flag.Bool("v", false, "debug logging to stderr")
	flag.Parse()

	// stdout carries the MCP protocol; everything else goes to stderr.
	logger, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}
	path := *dbPath
	if path == "" {
		path = cfg.Database.Path
	}

	db, err := database.Open(path, logger)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer db.Close()

	schema, err := db.Schema(context.Background())
	if err != nil {
		logger.Fatal("loading schema", zap.Error(err))
	}

	if err := server.ServeStdio(newServer(db, schema)); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func newServer(db agent.QueryRunner, schema database.Schema) *server.MCPServer {
	s := server.NewMCPServer("querychat-ask-database", "0.1.0")

	def := agent.AskDatabaseTool(schema.String())
	props, _ := def.Parameters["properties"].(map[string]any)
	s.AddTool(mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"query"},
		},
	}, askDatabaseHandler(db))

	return s
}

func askDatabaseHandler(db agent.QueryRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		query, ok := args["query"].(string)
		if !ok || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "error: 'query' argument must be a non-empty string"}},
				IsError: true,
			}, nil
		}

		res, err := db.Execute(ctx, query)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: database.FormatResult(res, err)}},
			IsError: err != nil,
		}, nil
	}
}
