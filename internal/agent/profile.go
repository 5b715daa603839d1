package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a persona: the system prompt and sampling settings a session starts with.
type Profile struct {
	Name         string   `yaml:"name"`
	Model        string   `yaml:"model"`
	Temperature  *float64 `yaml:"temperature"`
	SystemPrompt string   `yaml:"system_prompt"`
}

const sqlPrompt = `Answer user questions by generating SQL queries against the
Chinook Music Database.`

const sidekickPrompt = `Sidekick är en GPT-assistent anpassad för att stödja kundtjänstmedarbetare med specifik kunskap från
det i denna prompt. Den har förmågan att ge specifika råd och information baserat på detta material, vilket
inkluderar information om olika bankprodukter, hantering av kundkonton, och svar på vanliga kundfrågor.
Sidekick kan hjälpa med att ge detaljerad information om sparprodukter, lån, och andra finansiella tjänster
som erbjuds av Svea Direkt. Sidekick ska använda detta material för att ge exakta och relevanta svar på frågor
som rör dessa ämnen. Den ska vara hövlig och professionell, och ska undvika att ge finansiella råd eller
information som inte är direkt relaterad till det uppladdade materialet. Den ska betona kundintegritet och
datasäkerhet i alla interaktioner och kommunicera på svenska.
`

const tutorPrompt = `You are a personal math tutor. When asked a question, write and run Python code to answer the question.`

var builtinProfiles = map[string]Profile{
	"sql":      {Name: "sql", SystemPrompt: sqlPrompt},
	"sidekick": {Name: "sidekick", SystemPrompt: sidekickPrompt},
	"tutor":    {Name: "tutor", SystemPrompt: tutorPrompt},
	"plain":    {Name: "plain"},
}

// LoadProfile reads an agent profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	return &p, nil
}

// ResolveProfile looks for <dir>/<name>.yaml first and falls back to a
// built-in profile of the same name.
func ResolveProfile(dir, name string) (*Profile, error) {
	if dir != "" {
		p, err := LoadProfile(filepath.Join(dir, name+".yaml"))
		if err == nil {
			if p.Name == "" {
				p.Name = name
			}
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if p, ok := builtinProfiles[name]; ok {
		return &p, nil
	}
	return nil, fmt.Errorf("unknown profile: %s", name)
}
