package intent

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Command is one entry of the allow-list table. Only commands in this table
// can ever be executed; Exec is a shell-style line parsed at execution time.
type Command struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Phrases     []string `json:"phrases"`
	Keywords    []string `json:"keywords"`
	Exec        string   `json:"exec"`
	Dangerous   bool     `json:"dangerous"`
}

type commandFile struct {
	Commands []Command `json:"commands"`
}

// LoadCommands reads and validates the allow-list from a commands.json file.
func LoadCommands(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commands file: %w", err)
	}
	return ParseCommands(data)
}

func ParseCommands(data []byte) ([]Command, error) {
	var file commandFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse commands file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Commands))
	for i, cmd := range file.Commands {
		if strings.TrimSpace(cmd.ID) == "" {
			return nil, fmt.Errorf("command %d: missing id", i)
		}
		if _, dup := seen[cmd.ID]; dup {
			return nil, fmt.Errorf("command %q: duplicate id", cmd.ID)
		}
		seen[cmd.ID] = struct{}{}
		if strings.TrimSpace(cmd.Exec) == "" {
			return nil, fmt.Errorf("command %q: missing exec", cmd.ID)
		}
		if len(cmd.Phrases) == 0 && len(cmd.Keywords) == 0 {
			return nil, fmt.Errorf("command %q: needs at least one phrase or keyword", cmd.ID)
		}
	}
	return file.Commands, nil
}
