// Package validate checks request bodies against embedded JSON Schemas and
// reports failures as domain validation errors.
package validate

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names.
const (
	Register     = "register"
	Login        = "login"
	UpdateUser   = "update_user"
	DeleteUser   = "delete_user"
	ResetRequest = "reset_request"
	ResetConfirm = "reset_confirm"
)

var printer = message.NewPrinter(language.English)

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	c.RegisterFormat(&jsonschema.Format{Name: "email", Validate: validateEmail})

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, e := range entries {
		f, err := schemaFS.Open("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("open schema %s: %w", e.Name(), err)
		}
		doc, err := jsonschema.UnmarshalJSON(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", e.Name(), err)
		}

		url := "mem://schemas/" + e.Name()
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = sch
	}
	return v, nil
}

// Validate checks doc (as produced by a JSON decoder) against the named
// schema. A failure is a *domain.ValidationError.
func (v *Validator) Validate(schema string, doc any) error {
	sch, ok := v.schemas[schema]
	if !ok {
		return fmt.Errorf("validate: unknown schema %q", schema)
	}

	err := sch.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return &domain.ValidationError{Fields: fieldErrors(verr)}
}

// fieldErrors flattens the leaves of a validation error tree.
func fieldErrors(verr *jsonschema.ValidationError) []domain.FieldError {
	var out []domain.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}

		field := strings.Join(e.InstanceLocation, ".")
		switch k := e.ErrorKind.(type) {
		case *kind.Required:
			for _, m := range k.Missing {
				out = append(out, domain.FieldError{Field: join(field, m), Message: "is required"})
			}
		case *kind.AdditionalProperties:
			for _, p := range k.Properties {
				out = append(out, domain.FieldError{Field: join(field, p), Message: "is not allowed"})
			}
		default:
			out = append(out, domain.FieldError{Field: field, Message: e.ErrorKind.LocalizedString(printer)})
		}
	}
	walk(verr)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// validateEmail replaces the built-in email format so the schema accepts
// exactly what the services accept: the address after normalization.
func validateEmail(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if !domain.ValidEmail(s) {
		return errors.New("not a bare email address")
	}
	return nil
}
