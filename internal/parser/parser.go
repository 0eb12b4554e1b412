// Package parser reads scene scripts: markdown files with a YAML front
// matter block followed by dialogue and choice lines.
//
//	---
//	title: Abertura
//	route: Principal
//	background: bg/rua.png
//	---
//	Ana: Bom dia!
//	> Narration that happens to contain: a colon.
//	* Follow Ana -> parque
//	* Go home
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxSpeakerLen = 40

type Document struct {
	Frontmatter map[string]any
	// Key names the scene for choice targets; defaults to the file name
	// without extension.
	Key        string
	Title      string
	Route      string
	Background string
	Order      int
	Lines      []Line
	Choices    []ChoiceLine
	SourceFile string
}

type Line struct {
	Speaker string
	Text    string
}

// ChoiceLine is a choice as written. An empty Target ends the route.
type ChoiceLine struct {
	Text   string
	Target string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrInvalidChoice = errors.New("invalid choice line")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	if doc.Key == "" {
		doc.Key = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	trimmed = bytes.ReplaceAll(trimmed, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := string(rest[end+len("---\n"):])

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	order, err := parseOrder(frontmatter["order"])
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Frontmatter: frontmatter,
		Key:         stringField(frontmatter, "key"),
		Title:       strings.TrimSpace(title),
		Route:       stringField(frontmatter, "route"),
		Background:  stringField(frontmatter, "background"),
		Order:       order,
	}
	if err := parseBody(doc, body); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseBody(doc *Document, body string) error {
	for n, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "* "), strings.HasPrefix(line, "- "):
			choice, err := parseChoice(line[2:])
			if err != nil {
				return fmt.Errorf("body line %d: %w", n+1, err)
			}
			doc.Choices = append(doc.Choices, choice)
		case strings.HasPrefix(line, ">"):
			doc.Lines = append(doc.Lines, Line{Text: strings.TrimSpace(line[1:])})
		default:
			doc.Lines = append(doc.Lines, parseLine(line))
		}
	}
	return nil
}

func parseChoice(s string) (ChoiceLine, error) {
	text, target, _ := strings.Cut(s, "->")
	choice := ChoiceLine{Text: strings.TrimSpace(text), Target: strings.TrimSpace(target)}
	if choice.Text == "" {
		return ChoiceLine{}, ErrInvalidChoice
	}
	return choice, nil
}

// parseLine treats a short prefix before the first colon as the speaker.
func parseLine(s string) Line {
	speaker, text, ok := strings.Cut(s, ":")
	speaker = strings.TrimSpace(speaker)
	if !ok || speaker == "" || len(speaker) > maxSpeakerLen || strings.HasPrefix(text, "//") {
		return Line{Text: s}
	}
	return Line{Speaker: speaker, Text: strings.TrimSpace(text)}
}

func parseOrder(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("order must be an integer")
	}
}

func stringField(frontmatter map[string]any, key string) string {
	s, _ := frontmatter[key].(string)
	return strings.TrimSpace(s)
}
