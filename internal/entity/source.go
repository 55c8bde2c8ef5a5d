package entity

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileSource loads records from YAML (or JSON) files. A missing path
// yields no records rather than an error.
type FileSource struct {
	PeopleFile   string
	ProjectsFile string
	GlossaryFile string
}

type personDoc struct {
	Name     string   `yaml:"name"`
	Role     string   `yaml:"role"`
	Context  string   `yaml:"context"`
	Aliases  []string `yaml:"aliases"`
	Username string   `yaml:"telegram_username"`
}

type projectDoc struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// LoadPeople reads a mapping of username to person.
func (s FileSource) LoadPeople(ctx context.Context) ([]Record, error) {
	var doc map[string]personDoc
	if err := readYAML(s.PeopleFile, &doc); err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(doc))
	for u := range doc {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)

	out := make([]Record, 0, len(doc))
	for _, u := range usernames {
		p := doc[u]
		name := p.Name
		if name == "" {
			name = u
		}
		out = append(out, Record{
			Kind:    KindPerson,
			Key:     u,
			Name:    name,
			Aliases: p.Aliases,
			Role:    p.Role,
			Context: p.Context,
			Source:  s.PeopleFile,
		})
	}
	return out, nil
}

// LoadProjects reads either a list of projects or {projects: [...]}.
func (s FileSource) LoadProjects(ctx context.Context) ([]Record, error) {
	var node yaml.Node
	if err := readYAML(s.ProjectsFile, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return nil, nil
	}

	var list []projectDoc
	if err := node.Decode(&list); err != nil {
		var wrapped struct {
			Projects []projectDoc `yaml:"projects"`
		}
		if err2 := node.Decode(&wrapped); err2 != nil {
			return nil, fmt.Errorf("decode %s: %w", s.ProjectsFile, err)
		}
		list = wrapped.Projects
	}

	out := make([]Record, 0, len(list))
	for _, p := range list {
		name := p.Name
		if name == "" {
			name = p.Key
		}
		out = append(out, Record{
			Kind:    KindProject,
			Key:     p.Key,
			Name:    name,
			Aliases: p.Keywords,
			Context: p.Description,
			Source:  s.ProjectsFile,
		})
	}
	return out, nil
}

// LoadGlossary reads a mapping of term to definition.
func (s FileSource) LoadGlossary(ctx context.Context) ([]Record, error) {
	var doc map[string]string
	if err := readYAML(s.GlossaryFile, &doc); err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(doc))
	for t := range doc {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	out := make([]Record, 0, len(doc))
	for _, t := range terms {
		out = append(out, Record{
			Kind:       KindTerm,
			Key:        t,
			Name:       t,
			Definition: doc[t],
			Source:     s.GlossaryFile,
		})
	}
	return out, nil
}

func readYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
