package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/michaelbrown/querychat/internal/llm"
)

// AskDatabase is the name of the single tool the model may call.
const AskDatabase = "ask_database"

// AskDatabaseTool builds the tool definition. The schema text is embedded
// in the query parameter description so the model writes compatible SQL.
func AskDatabaseTool(schema string) llm.ToolDef {
	return llm.ToolDef{
		Name: AskDatabase,
		Description: "Use this function to answer user questions about music. " +
			"Input should be a fully formed SQL query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type": "string",
					"description": "SQL query extracting info to answer the user's question.\n" +
						"SQL should be written using this database schema:\n" +
						schema +
						"The query should be returned in plain text, not in JSON.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// MalformedToolCallError means the argument text of a tool call could not
// be used: invalid JSON or no "query" field.
type MalformedToolCallError struct {
	Arguments string
	Err       error
}

func (e *MalformedToolCallError) Error() string {
	return fmt.Sprintf("malformed tool call arguments %q: %v", e.Arguments, e.Err)
}

func (e *MalformedToolCallError) Unwrap() error {
	return e.Err
}

var errMissingQuery = errors.New(`missing required field "query"`)

// ParseQuery extracts the SQL text from ask_database arguments.
func ParseQuery(arguments string) (string, error) {
	var args struct {
		Query *string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", &MalformedToolCallError{Arguments: arguments, Err: err}
	}
	if args.Query == nil || *args.Query == "" {
		return "", &MalformedToolCallError{Arguments: arguments, Err: errMissingQuery}
	}
	return *args.Query, nil
}
