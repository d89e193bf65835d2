// Package i18n provides localized user-facing messages for error codes.
package i18n

import (
	"bytes"
	"strings"
	"text/template"
)

// Code is a machine-readable error code (duplicated from the errors package
// to avoid an import cycle).
type Code = string

// BaseLocale is the fallback locale when a requested locale is unknown.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var catalogs = map[string]*Catalog{
	BaseLocale: {locale: BaseLocale, messages: messagesEnUS},
}

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if c, ok := catalogs[requested]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Message renders the user-facing message for code, applying metadata to the
// message template. Unknown codes fall back to the generic unknown message.
func (c *Catalog) Message(code Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		raw = c.messages[CodeUnknown]
	}
	if len(metadata) == 0 || !strings.Contains(raw, "{{") {
		return raw
	}

	tmpl, err := template.New("message").Parse(raw)
	if err != nil {
		return raw
	}
	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, metadata); err != nil {
		return raw
	}
	return rendered.String()
}
