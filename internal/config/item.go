package config

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"
)

type Item struct {
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
	Model    string `yaml:"model"`
	Voice    string `yaml:"voice"`
	Language string `yaml:"language"`
}

type item Item

func (i *Item) UnmarshalYAML(node *yaml.Node) error {
	var y item
	if err := checkKnownFields(node, y, "items."); err != nil {
		return err
	}
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	if strings.TrimSpace(y.Text) == "" {
		return keyEmptyError("items.text")
	}
	if y.Name != "" {
		y.Name = sanitizeFilename(y.Name)
		if y.Name == "" {
			return keyEmptyError("items.name")
		}
	}
	*i = Item(y)
	return nil
}

var (
	underscoreReg      = regexp.MustCompile(`__+`)
	filenameNormalizer = strings.NewReplacer(
		" ", "_",
		"\n", "_",
		"\t", "_",
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"\\", "_",
		"/", "_",
		"|", "_",
		"?", "_",
		"*", "_",
		".", "_",
	)
)

func sanitizeFilename(filename string) string {
	return underscoreReg.ReplaceAllString(
		strings.Trim(
			filenameNormalizer.Replace(filename),
			"_"),
		"_")
}

func truncate(s string, runes int) string {
	if utf8.RuneCountInString(s) <= runes {
		return s
	}
	return string([]rune(s)[:runes])
}
