package contentdef

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ToSafeName normalizes a display name into an identifier-safe token: the
// input is lowercased and every rune that is not a letter or digit is dropped.
// The result may be empty when the input carries no usable runes.
func ToSafeName(displayName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(displayName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VersionName resolves a name collision by versioning a numeric suffix: a
// trailing hyphen-separated positive integer is incremented, a non-positive or
// unparsable suffix becomes 2, and a name with no suffix gains "-2". Applied
// repeatedly it always yields a fresh name; it never reuses a smaller free
// integer.
func VersionName(name string) string {
	version := 2
	if i := strings.LastIndex(name, "-"); i >= 0 {
		if n, err := strconv.Atoi(name[i+1:]); err == nil {
			if n > 0 {
				version = n + 1
			}
			name = name[:i]
		}
	}
	return fmt.Sprintf("%s-%d", name, version)
}

// GenerateTypeName derives a unique type name from a display name: sanitize,
// then version while a type with the candidate name already exists.
func (s *service) GenerateTypeName(ctx context.Context, displayName string) (string, error) {
	name := ToSafeName(displayName)
	if name == "" {
		return "", &DefinitionError{Name: displayName, Op: "generate_type_name", Err: ErrDisplayNameRequired}
	}

	for {
		def, err := s.store.GetTypeDefinition(ctx, name)
		if err != nil {
			return "", &DefinitionError{Name: name, Op: "generate_type_name", Err: err}
		}
		if def == nil {
			return name, nil
		}
		name = VersionName(name)
	}
}

// GenerateFieldName derives a field name unique within the target's field set.
// The target is a part; when the name identifies a type instead, the field set
// is that of the type's implicit part (the part sharing the type's name), or
// empty when none is attached. Comparison is case-insensitive after trimming.
func (s *service) GenerateFieldName(ctx context.Context, partOrTypeName, displayName string) (string, error) {
	name := ToSafeName(displayName)
	if name == "" {
		return "", &DefinitionError{Name: displayName, Op: "generate_field_name", Err: ErrInvalidFieldName}
	}

	part, err := s.store.GetPartDefinition(ctx, partOrTypeName)
	if err != nil {
		return "", &DefinitionError{Name: partOrTypeName, Op: "generate_field_name", Err: err}
	}
	if part == nil {
		typeDef, err := s.store.GetTypeDefinition(ctx, partOrTypeName)
		if err != nil {
			return "", &DefinitionError{Name: partOrTypeName, Op: "generate_field_name", Err: err}
		}
		if typeDef == nil {
			return "", &DefinitionError{Name: partOrTypeName, Op: "generate_field_name", Err: ErrPartOrTypeNotFound}
		}
		// A type's implicit part persists under the type's own name, so the
		// part lookup above already covers an attached implicit part. With no
		// implicit part attached there is no field set to resolve against.
	}

	if part == nil {
		return name, nil
	}
	for part.HasFieldNamed(name) {
		name = VersionName(name)
	}
	return name, nil
}
