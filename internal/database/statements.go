package database

import (
	"strings"
	"unicode"
)

// countStatements reports how many non-empty statements query holds.
// Semicolons inside string literals, quoted identifiers, comments and
// trigger bodies do not end a statement.
func countStatements(query string) int {
	var (
		n       int
		body    bool // current statement has tokens
		trigger bool // current statement is CREATE ... TRIGGER
		depth   int  // BEGIN/CASE nesting inside a trigger body
		words   int  // words seen in the current statement
		word    strings.Builder
	)

	endWord := func() {
		if word.Len() == 0 {
			return
		}
		w := strings.ToUpper(word.String())
		word.Reset()
		words++
		switch {
		case words <= 4 && w == "TRIGGER":
			trigger = true
		case trigger && (w == "BEGIN" || w == "CASE"):
			depth++
		case trigger && w == "END" && depth > 0:
			depth--
		}
	}

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			endWord()
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			endWord()
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				i = len(query)
			} else {
				i += end + 3
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			endWord()
			body = true
			quote := c
			if c == '[' {
				quote = ']'
			}
			for i++; i < len(query); i++ {
				if query[i] != quote {
					continue
				}
				// Doubled quotes escape themselves.
				if quote != ']' && i+1 < len(query) && query[i+1] == quote {
					i++
					continue
				}
				break
			}
		case c == ';':
			endWord()
			if depth > 0 {
				continue
			}
			if body {
				n++
			}
			body, trigger, words = false, false, 0
		case unicode.IsSpace(rune(c)):
			endWord()
		case c == '_' || c >= 0x80 || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)):
			word.WriteByte(c)
			body = true
		default:
			endWord()
			body = true
		}
	}
	endWord()
	if body {
		n++
	}
	return n
}
