// Package eventdata describes the variables a business event exposes to mail
// templates, and the capabilities an event can offer to the mail action.
package eventdata

import (
	"encoding/json"

	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
)

// Scalar type names.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
)

// Type is one declared variable type.
type Type interface {
	typeName() string
}

// EntityType refers to a storefront entity by its definition name.
type EntityType struct {
	Entity string
}

func (EntityType) typeName() string { return "entity" }

func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": t.typeName(), "entityName": t.Entity})
}

type ScalarValueType struct {
	Type string
}

func (t ScalarValueType) typeName() string { return t.Type }

func (t ScalarValueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": t.Type})
}

type ArrayType struct {
	Of Type
}

func (ArrayType) typeName() string { return "array" }

func (t ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": t.typeName(), "of": t.Of})
}

// Field is a named variable.
type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Collection keeps declared fields in declaration order.
type Collection struct {
	fields []Field
}

func NewCollection() *Collection {
	return &Collection{}
}

// Add appends or replaces the field name.
func (c *Collection) Add(name string, t Type) *Collection {
	for i := range c.fields {
		if c.fields[i].Name == name {
			c.fields[i].Type = t
			return c
		}
	}
	c.fields = append(c.fields, Field{Name: name, Type: t})
	return c
}

func (c *Collection) Get(name string) (Type, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (c *Collection) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// MarshalJSON renders the collection as an object keyed by field name.
func (c *Collection) MarshalJSON() ([]byte, error) {
	out := make(map[string]Type, len(c.fields))
	for _, f := range c.fields {
		out[f.Name] = f.Type
	}
	return json.Marshal(out)
}

// MailRecipientStruct maps recipient addresses to display names.
type MailRecipientStruct struct {
	Recipients map[string]string `json:"recipients"`
}

func NewMailRecipientStruct(recipients map[string]string) *MailRecipientStruct {
	if recipients == nil {
		recipients = map[string]string{}
	}
	return &MailRecipientStruct{Recipients: recipients}
}

// MailAction is an event the mail-send action can handle.
type MailAction interface {
	Name() string
	MailStruct() *MailRecipientStruct
	Context() platform.Context
	TemplateVars() map[string]any
}

// SalesChannelAware events carry the sales channel they happened in.
type SalesChannelAware interface {
	SalesChannelID() string
}
