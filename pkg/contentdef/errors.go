package contentdef

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrTypeNotFound indicates a content type definition was not found
	ErrTypeNotFound = errors.New("content type definition not found")

	// ErrPartNotFound indicates a content part definition was not found
	ErrPartNotFound = errors.New("content part definition not found")

	// ErrFieldNotFound indicates a field was not found on the part
	ErrFieldNotFound = errors.New("content field definition not found")

	// ErrPartOrTypeNotFound indicates a name resolved to neither a part nor a type
	ErrPartOrTypeNotFound = errors.New("name matches neither a part nor a type definition")

	// ErrPartAlreadyExists indicates a duplicate part name on explicit creation
	ErrPartAlreadyExists = errors.New("content part definition already exists")

	// ErrDisplayNameRequired indicates an empty display name on creation
	ErrDisplayNameRequired = errors.New("display name is required")

	// ErrInvalidTypeName indicates a type name that does not start with a letter
	ErrInvalidTypeName = errors.New("type name must start with a letter")

	// ErrInvalidFieldName indicates a field name that is empty after sanitization
	ErrInvalidFieldName = errors.New("field name must not be empty after sanitization")
)

// DefinitionError represents an error raised by a definition operation
type DefinitionError struct {
	Name string
	Op   string
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition operation %s failed for %q: %v", e.Op, e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// StoreError represents an error raised by the definition store gateway
type StoreError struct {
	Kind string // "type", "part", or "schema"
	Name string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for %s %q: %v", e.Op, e.Kind, e.Name, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
