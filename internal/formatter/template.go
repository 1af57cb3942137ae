// Package formatter renders user-defined status lines. Templates use
// {{variable-name}} placeholders resolved from a VariableContext; named
// presets cover the common layouts.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateEngine provides template parsing and variable substitution.
type TemplateEngine interface {
	// Parse returns the variables found in the template, without duplicates.
	Parse(template string) ([]string, error)

	// Substitute replaces variables in the template with values from the context.
	Substitute(template string, ctx VariableContext) (string, error)

	// Validate checks the template delimiters and variable names.
	Validate(template string) error
}

type templateEngine struct {
	variablePattern *regexp.Regexp
	resolver        VariableResolver
}

// NewTemplateEngine creates a new template engine instance.
func NewTemplateEngine() TemplateEngine {
	return &templateEngine{
		variablePattern: regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`),
		resolver:        NewVariableResolver(),
	}
}

// Parse identifies all variables in a template string using {{variable-name}} syntax.
func (te *templateEngine) Parse(template string) ([]string, error) {
	variables := []string{}
	seen := make(map[string]bool)
	for _, match := range te.variablePattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if !seen[name] {
			variables = append(variables, name)
			seen[name] = true
		}
	}
	return variables, nil
}

// Substitute replaces all variables in the template with values from the context.
func (te *templateEngine) Substitute(template string, ctx VariableContext) (string, error) {
	if err := te.Validate(template); err != nil {
		return "", err
	}
	var resolveErr error
	result := te.variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := te.variablePattern.FindStringSubmatch(match)[1]
		value, err := te.resolver.Resolve(name, ctx)
		if err != nil && resolveErr == nil {
			resolveErr = err
		}
		return value
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}

// Validate checks if a template has valid syntax and only known variables.
func (te *templateEngine) Validate(template string) error {
	openCount := strings.Count(template, "{{")
	closeCount := strings.Count(template, "}}")
	if openCount != closeCount {
		return fmt.Errorf("mismatched variable delimiters: %d opens, %d closes", openCount, closeCount)
	}

	variables, _ := te.Parse(template)
	for _, name := range variables {
		if !IsVariable(name) {
			return fmt.Errorf("unknown variable: %s (available: %s)", name, strings.Join(Variables(), ", "))
		}
	}
	return nil
}

// Render expands a preset name or a literal template.
func Render(templateOrPreset string, ctx VariableContext) (string, error) {
	template := templateOrPreset
	if preset, err := NewPresetRegistry().Get(templateOrPreset); err == nil {
		template = preset.Template
	}
	return NewTemplateEngine().Substitute(template, ctx)
}
