package compiler

import (
	"errors"
	"strings"
)

// Compile error kinds. A CompileError unwraps to exactly one of them.
var (
	ErrAliasCollision      = errors.New("alias collision")
	ErrUnknownField        = errors.New("unknown field")
	ErrUnknownRelationship = errors.New("unknown relationship")
	ErrUnknownObjectType   = errors.New("unknown object type")
	ErrMalformedDiff       = errors.New("malformed diff")
	ErrVariableConflict    = errors.New("conflicting variable types")
)

// CompileError reports metadata the compiler cannot turn into a document.
// It means the caller and the extracted schema disagree, and is never a
// runtime condition to retry.
type CompileError struct {
	Kind       error
	ObjectType string
	Field      string
	Detail     string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile: ")
	b.WriteString(e.Kind.Error())
	if e.ObjectType != "" {
		b.WriteString(" on ")
		b.WriteString(e.ObjectType)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	} else if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

func compileErr(kind error, objectType, field, detail string) error {
	return &CompileError{Kind: kind, ObjectType: objectType, Field: field, Detail: detail}
}
