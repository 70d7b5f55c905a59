package schema

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind names the value type a field accepts.
type Kind string

const (
	KindChar      Kind = "char"
	KindArguments Kind = "arguments"
	KindEmail     Kind = "email"
	KindPhone     Kind = "phone"
	KindDate      Kind = "date"
	KindBirthday  Kind = "birthday"
	KindGender    Kind = "gender"
	KindClientIDs Kind = "client_ids"
)

var knownKinds = map[Kind]bool{
	KindChar:      true,
	KindArguments: true,
	KindEmail:     true,
	KindPhone:     true,
	KindDate:      true,
	KindBirthday:  true,
	KindGender:    true,
	KindClientIDs: true,
}

// SchemaSpec is the compiled declaration of one request entity.
type SchemaSpec struct {
	Name        string    `yaml:"-"`
	Description string    `yaml:"description,omitempty"`
	Fields      FieldList `yaml:"fields"`
}

// Field declares a single field of a schema.
//
// Fields support two declaration styles:
//
//	Shorthand (scalar): login: char!?
//	Long form (mapping): login:
//	                        type: char
//	                        required: true
//	                        nullable: true
//
// In shorthand "!" marks the field required and "?" marks it nullable, in
// that order.
type Field struct {
	Name string `yaml:"-"`

	// Type is the user-facing type string, possibly with suffixes.
	Type string `yaml:"type"`

	// Kind is derived from Type.
	Kind Kind `yaml:"-"`

	// Required rejects absent and null values.
	Required bool `yaml:"required,omitempty"`

	// Nullable accepts empty values (empty string, zero, empty list or object).
	Nullable bool `yaml:"nullable,omitempty"`

	rule Rule
}

// UnmarshalYAML implements custom unmarshaling to support both shorthand
// and long-form field declarations.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return f.parseTypeString(value.Value)
	}

	type fieldAlias Field
	var alias fieldAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*f = Field(alias)

	if f.Type == "" {
		return fmt.Errorf("field missing 'type'")
	}
	return f.parseTypeString(f.Type)
}

// parseTypeString parses a type like "char!?" and sets Kind, Required and
// Nullable on the receiver.
func (f *Field) parseTypeString(s string) error {
	if strings.HasSuffix(s, "?") {
		f.Nullable = true
		s = strings.TrimSuffix(s, "?")
	}
	if strings.HasSuffix(s, "!") {
		f.Required = true
		s = strings.TrimSuffix(s, "!")
	}

	kind := Kind(s)
	if !knownKinds[kind] {
		return fmt.Errorf("unsupported type %q", s)
	}
	f.Type = s
	f.Kind = kind
	return nil
}

// FieldList keeps fields in declaration order, which is also the order they
// are validated in.
type FieldList []*Field

// UnmarshalYAML decodes a mapping of field name to declaration, preserving
// document order.
func (l *FieldList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", value.Line)
	}

	fields := make(FieldList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, node := value.Content[i], value.Content[i+1]
		f := &Field{}
		if err := node.Decode(f); err != nil {
			return fmt.Errorf("field %q: %w", key.Value, err)
		}
		f.Name = key.Value
		fields = append(fields, f)
	}
	*l = fields
	return nil
}

// Validate checks that the schema declaration is structurally valid.
func (s *SchemaSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %q must define at least one field", s.Name)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f == nil || f.Name == "" {
			return fmt.Errorf("schema %q: field name cannot be empty", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true
		if !knownKinds[f.Kind] {
			return fmt.Errorf("schema %q: field %q: unsupported type %q", s.Name, f.Name, f.Kind)
		}
	}
	return nil
}

// compile validates the declaration and builds one rule per field.
func (s *SchemaSpec) compile(now func() time.Time) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, f := range s.Fields {
		f.rule = newRule(f, now)
	}
	return nil
}

func newRule(f *Field, now func() time.Time) Rule {
	base := fieldRule{name: f.Name, required: f.Required, nullable: f.Nullable}
	switch f.Kind {
	case KindArguments:
		return ArgumentsRule{base}
	case KindEmail:
		return EmailRule{CharRule{base}}
	case KindPhone:
		return PhoneRule{base}
	case KindDate:
		return DateRule{base}
	case KindBirthday:
		return BirthdayRule{DateRule: DateRule{base}, now: now}
	case KindGender:
		return GenderRule{base}
	case KindClientIDs:
		return ClientIDsRule{base}
	default:
		return CharRule{base}
	}
}

// Rule returns the compiled rule of the field, or nil before compilation.
func (f *Field) Rule() Rule {
	return f.rule
}

// ValidateData checks data against every field in declaration order and
// returns the first failure.
func (s *SchemaSpec) ValidateData(data map[string]interface{}) error {
	for _, f := range s.Fields {
		if f.rule == nil {
			return fmt.Errorf("schema %q: field %q is not compiled", s.Name, f.Name)
		}
		if err := f.rule.Validate(data[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Present returns the names of declared fields that carry a non-null value
// in data, in declaration order.
func (s *SchemaSpec) Present(data map[string]interface{}) []string {
	var names []string
	for _, f := range s.Fields {
		if data[f.Name] != nil {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field returns the declaration with the given name.
func (s *SchemaSpec) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
