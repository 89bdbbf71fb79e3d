package insight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template holds the prompt sections. Any field left empty in an override
// file falls back to the default.
type Template struct {
	// System is the system message for the model.
	System string `yaml:"system"`

	// Intro opens the prompt; the literal token {subreddit} is replaced
	// with the thread's community name.
	Intro string `yaml:"intro"`

	// Rules constrain what counts as an insight.
	Rules string `yaml:"rules"`

	// Schema specifies the exact JSON shape of the response.
	Schema string `yaml:"schema"`
}

// DefaultTemplate returns the built-in analysis prompt sections.
func DefaultTemplate() Template {
	return Template{
		System: SystemPrompt,
		Intro: "You are an expert product researcher. Analyze this Reddit thread from r/{subreddit} " +
			"to extract precise, actionable insights for someone looking to build products or services.",
		Rules:  defaultRules,
		Schema: defaultSchema,
	}
}

// LoadTemplate reads a YAML template override from path. Missing fields keep
// their defaults, so an override file may customize a single section.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read prompt template: %w", err)
	}

	tmpl := DefaultTemplate()
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("parse prompt template: %w", err)
	}
	return tmpl, nil
}
