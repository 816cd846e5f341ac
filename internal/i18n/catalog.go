// Package i18n holds the user-facing message catalog.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed messages.pt-BR.toml
var ptBR []byte

// Catalog resolves error codes, field names and validation tags to localized text.
type Catalog struct {
	Errors     map[string]string `toml:"errors"`
	Fields     map[string]string `toml:"fields"`
	Rules      map[string]string `toml:"validation"`
	Messages   map[string]string `toml:"messages"`
}

// Load parses the embedded pt-BR catalog.
func Load() (*Catalog, error) {
	return Parse(ptBR)
}

// MustLoad panics if the embedded catalog is malformed.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return c
}

// Parse decodes a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// Error returns the message for code, or fallback when the code is unknown.
func (c *Catalog) Error(code, fallback string) string {
	if c != nil {
		if msg, ok := c.Errors[code]; ok {
			return msg
		}
	}
	return fallback
}

// Message translates a failure-specific English message, returning it unchanged when no entry exists.
func (c *Catalog) Message(text string) string {
	if c != nil {
		if msg, ok := c.Messages[text]; ok {
			return msg
		}
	}
	return text
}

// Field returns the display name of a field.
func (c *Catalog) Field(name string) string {
	if c != nil {
		if f, ok := c.Fields[name]; ok {
			return f
		}
	}
	return name
}

// Validation renders the message for a validator tag.
func (c *Catalog) Validation(tag, field, param string) string {
	tmpl := "{field} is invalid"
	if c != nil {
		if t, ok := c.Rules[tag]; ok {
			tmpl = t
		} else if t, ok := c.Rules["default"]; ok {
			tmpl = t
		}
	}
	r := strings.NewReplacer("{field}", c.Field(field), "{param}", strings.ReplaceAll(param, " ", ", "))
	return r.Replace(tmpl)
}
