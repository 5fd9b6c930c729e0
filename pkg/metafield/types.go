// ABOUTME: Metafield type model and data types
// ABOUTME: Structured scalar/list variants replace string-prefix dispatch

package metafield

import (
	"strings"
	"time"
)

// Kind identifies a scalar metafield type as named by the Shopify Admin API.
type Kind string

const (
	KindSingleLineText   Kind = "single_line_text_field"
	KindMultiLineText    Kind = "multi_line_text_field"
	KindPageReference    Kind = "page_reference"
	KindProductReference Kind = "product_reference"
	KindVariantReference Kind = "variant_reference"
	KindFileReference    Kind = "file_reference"
	KindNumberInteger    Kind = "number_integer"
	KindNumberDecimal    Kind = "number_decimal"
	KindBoolean          Kind = "boolean"
	KindDate             Kind = "date"      // ISO 8601
	KindDateTime         Kind = "date_time" // ISO 8601
	KindJSON             Kind = "json"
	KindColor            Kind = "color"
	KindRating           Kind = "rating"
	KindDimension        Kind = "dimension" // {value: float, unit: str}
	KindVolume           Kind = "volume"
	KindWeight           Kind = "weight"
)

// listPrefix marks list variants in the API's type vocabulary, e.g.
// "list.single_line_text_field".
const listPrefix = "list."

var knownKinds = map[Kind]struct{}{
	KindSingleLineText:   {},
	KindMultiLineText:    {},
	KindPageReference:    {},
	KindProductReference: {},
	KindVariantReference: {},
	KindFileReference:    {},
	KindNumberInteger:    {},
	KindNumberDecimal:    {},
	KindBoolean:          {},
	KindDate:             {},
	KindDateTime:         {},
	KindJSON:             {},
	KindColor:            {},
	KindRating:           {},
	KindDimension:        {},
	KindVolume:           {},
	KindWeight:           {},
}

// Known reports whether k is one of the enumerated scalar kinds. Definitions
// created with newer API type names still parse; they take the text path in
// the transformer.
func (k Kind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// Type is a metafield type: a scalar kind, optionally wrapped in a list.
// List-of-list is unrepresentable by construction.
type Type struct {
	Base Kind
	List bool
}

// Scalar returns the non-list type for k.
func Scalar(k Kind) Type {
	return Type{Base: k}
}

// ListOf returns the list type whose elements are of kind k.
func ListOf(k Kind) Type {
	return Type{Base: k, List: true}
}

// Element returns the scalar element type of a list type. For scalar types it
// returns the type itself.
func (t Type) Element() Type {
	return Type{Base: t.Base}
}

// String renders the type in the API's wire vocabulary.
func (t Type) String() string {
	if t.List {
		return listPrefix + string(t.Base)
	}
	return string(t.Base)
}

// ParseType parses an API type name such as "number_integer" or
// "list.product_reference". Nested lists are rejected; unknown scalar names
// are accepted as-is so remote vocabulary growth does not break resolution.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Type{}, &TypeParseError{Name: name, Reason: "empty type name"}
	}

	base, isList := strings.CutPrefix(name, listPrefix)
	if isList && strings.HasPrefix(base, listPrefix) {
		return Type{}, &TypeParseError{Name: name, Reason: "nested list types are not supported"}
	}
	if base == "" {
		return Type{}, &TypeParseError{Name: name, Reason: "list type missing element type"}
	}

	return Type{Base: Kind(base), List: isList}, nil
}

// Definition is the schema-level declaration of a metafield, immutable once
// fetched from the platform.
type Definition struct {
	ID        string // remote definition GID
	Namespace string
	Key       string
	Name      string // display name, may be empty
	Type      Type
}

// Metafield is a metafield value as it exists on a specific owner entity.
type Metafield struct {
	ID        string
	Namespace string
	Key       string
	Type      Type
	Value     string
	UpdatedAt time.Time
}

// Field is one metafield write requested by a caller. Value is loosely typed;
// the transformer coerces it into the platform's string encoding. Type is an
// optional caller override; ForceType makes the override win over schema and
// existing-value resolution.
type Field struct {
	Namespace string
	Key       string
	Value     any
	Type      *Type
	ForceType bool
}

// UserError is a field-level validation or permission failure reported inside
// an otherwise successful API response.
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteResult reports the outcome of a single or batched metafield write.
type WriteResult struct {
	Success    bool
	OwnerID    string
	Metafields []Metafield
	UserErrors []UserError
}
