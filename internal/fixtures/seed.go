package fixtures

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Seed is the data set written into empty storage.
type Seed struct {
	Users    []domain.User             `json:"users"`
	Agents   []domain.Agent            `json:"agents"`
	Tickets  []domain.Ticket           `json:"tickets"`
	Articles []domain.KnowledgeArticle `json:"articles"`
}

// Default returns the built-in data set.
func Default() Seed {
	return Seed{
		Users:    Users(),
		Agents:   Agents(),
		Tickets:  Tickets(),
		Articles: Articles(),
	}
}

// LoadSeedFile reads a YAML or JSON seed file. Sections missing from the
// file keep their built-in values.
func LoadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes a YAML (or JSON, which is valid YAML) seed document.
func ParseSeed(raw []byte) (Seed, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	// Round-trip through JSON so the domain json tags and time parsing apply.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return Seed{}, fmt.Errorf("normalize seed: %w", err)
	}
	var parsed Seed
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	out := Default()
	if parsed.Users != nil {
		out.Users = parsed.Users
	}
	if parsed.Agents != nil {
		out.Agents = parsed.Agents
	}
	if parsed.Tickets != nil {
		for i := range parsed.Tickets {
			if parsed.Tickets[i].Comments == nil {
				parsed.Tickets[i].Comments = []domain.Comment{}
			}
		}
		out.Tickets = parsed.Tickets
	}
	if parsed.Articles != nil {
		out.Articles = parsed.Articles
	}
	return out, nil
}
