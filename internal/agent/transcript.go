package agent

import (
	"fmt"
	"strings"

	"github.com/michaelbrown/querychat/internal/llm"
)

// Transcript renders the conversation as a markdown document. The system
// prompt is omitted; it may hold a whole document's text.
func Transcript(messages []llm.Message) string {
	var b strings.Builder

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			continue
		case llm.RoleUser:
			b.WriteString(fmt.Sprintf("## You\n\n%s\n\n", m.Content))
		case llm.RoleAssistant:
			if m.Content != "" {
				b.WriteString(fmt.Sprintf("## Assistant\n\n%s\n\n", m.Content))
			}
			for _, tc := range m.ToolCalls {
				b.WriteString(fmt.Sprintf("**Tool Call:** `%s`\n```json\n%s\n```\n\n", tc.Name, tc.Arguments))
			}
		case llm.RoleTool:
			b.WriteString(fmt.Sprintf("<details>\n<summary>Tool Result</summary>\n\n```\n%s\n```\n</details>\n\n", strings.TrimRight(m.Content, "\n")))
		}
	}

	return b.String()
}
