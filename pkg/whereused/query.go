// Package whereused resolves "where is this ABAP object used" queries against
// the ADT usage index. The remote index covers object kinds unevenly and
// callers often pass the wrong kind, so a query is tried as an ordered list of
// strategies until one returns recognisable usage data. When none does the
// caller gets a guidance document describing manual lookups instead of an error.
package whereused

import (
	"errors"
	"strings"
)

// DefaultMaxResults is used when the caller gives no positive result cap.
const DefaultMaxResults = 100

// ObjectType is the caller-declared kind of the object being looked up.
type ObjectType string

const (
	TypeClass     ObjectType = "CLASS"
	TypeInterface ObjectType = "INTERFACE"
	TypeProgram   ObjectType = "PROGRAM"
	TypeFunction  ObjectType = "FUNCTION"
	TypeTable     ObjectType = "TABLE"
	TypeStructure ObjectType = "STRUCTURE"
	TypeUnknown   ObjectType = "UNKNOWN"
)

// DeclarableTypes lists the object types a caller may declare, in the order
// they are offered for retries.
var DeclarableTypes = []ObjectType{
	TypeClass,
	TypeInterface,
	TypeProgram,
	TypeFunction,
	TypeTable,
	TypeStructure,
}

// ParseObjectType maps a caller-supplied type hint to an ObjectType.
// Matching is case-insensitive; empty or unrecognised hints yield TypeUnknown.
func ParseObjectType(s string) ObjectType {
	candidate := ObjectType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range DeclarableTypes {
		if candidate == t {
			return t
		}
	}
	return TypeUnknown
}

// ErrEmptyObjectName is returned when a query has no object name.
var ErrEmptyObjectName = errors.New("object name is required")

// ObjectQuery is one where-used request. Build it with NewObjectQuery.
type ObjectQuery struct {
	Name         string
	DeclaredType ObjectType
	MaxResults   int
}

// NewObjectQuery normalises the caller input: the name is trimmed and
// uppercased, the type hint parsed, and a non-positive cap replaced by
// DefaultMaxResults.
func NewObjectQuery(name, objectType string, maxResults int) (ObjectQuery, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ObjectQuery{}, ErrEmptyObjectName
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return ObjectQuery{
		Name:         name,
		DeclaredType: ParseObjectType(objectType),
		MaxResults:   maxResults,
	}, nil
}
