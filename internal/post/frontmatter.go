package post

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for front matter formats other than yaml and toml.
var ErrUnknownFormat = errors.New("unknown front matter format")

// Front matter formats and their fences.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"

	yamlFence = "---"
	tomlFence = "+++"
)

// dateLayout matches JavaScript's Date.toISOString.
const dateLayout = "2006-01-02T15:04:05.000Z"

// FrontMatter is the header block of a post. Empty optional fields are omitted.
// Field order is the TOML output order.
type FrontMatter struct {
	Layout     string    `toml:"layout"`
	Title      string    `toml:"title"`
	Subtitle   string    `toml:"subtitle,omitempty"`
	Author     string    `toml:"author,omitempty"`
	Date       time.Time `toml:"date"`
	Tags       []string  `toml:"tags,omitempty"`
	Background string    `toml:"background,omitempty"`
}

// Render returns the fenced header block, ending in a newline.
func (fm *FrontMatter) Render(format string) (string, error) {
	switch format {
	case FormatYAML, "":
		return fm.renderYAML()
	case FormatTOML:
		return fm.renderTOML()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// renderYAML keeps the classic Jekyll shape: strings double-quoted, tags as a
// flow list, background single-quoted, date plain.
func (fm *FrontMatter) renderYAML() (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}

	scalar := func(value string, style yaml.Style) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: style}
	}

	add("layout", scalar(fm.Layout, 0))
	add("title", scalar(fm.Title, yaml.DoubleQuotedStyle))

	if fm.Subtitle != "" {
		add("subtitle", scalar(fm.Subtitle, yaml.DoubleQuotedStyle))
	}

	if fm.Author != "" {
		add("author", scalar(fm.Author, yaml.DoubleQuotedStyle))
	}

	if !fm.Date.IsZero() {
		add("date", scalar(fm.Date.UTC().Format(dateLayout), 0))
	}

	if len(fm.Tags) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, tag := range fm.Tags {
			seq.Content = append(seq.Content, scalar(tag, yaml.DoubleQuotedStyle))
		}

		add("tags", seq)
	}

	if fm.Background != "" {
		add("background", scalar(fm.Background, yaml.SingleQuotedStyle))
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	return yamlFence + "\n" + buf.String() + yamlFence + "\n", nil
}

func (fm *FrontMatter) renderTOML() (string, error) {
	out := *fm
	out.Date = out.Date.UTC()

	data, err := toml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	return tomlFence + "\n" + string(data) + tomlFence + "\n", nil
}

// Compose assembles the final post text: header, blank line, trimmed body.
func Compose(header, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return header
	}

	return header + "\n" + body + "\n"
}
