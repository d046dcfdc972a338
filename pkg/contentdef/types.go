package contentdef

import "strings"

// TypeSettings holds the flags set on a content type at creation.
type TypeSettings struct {
	Creatable bool `json:"creatable"`
	Draftable bool `json:"draftable"`
	Listable  bool `json:"listable"`
	Securable bool `json:"securable"`
}

// DefaultTypeSettings are applied to every type created through the service.
func DefaultTypeSettings() TypeSettings {
	return TypeSettings{Creatable: true, Draftable: true, Listable: true, Securable: true}
}

// PartSettings holds the flags set on a part definition.
type PartSettings struct {
	Attachable bool `json:"attachable"`
}

// ContentTypeDefinition describes a named, user-composable schema for a kind
// of content item. Name is the stable identifier and is immutable once set;
// DisplayName is the human label. The Parts slice holds the ordered type→part
// bindings, each carrying its own settings distinct from the part's own.
type ContentTypeDefinition struct {
	Name        string                      `json:"name"`
	DisplayName string                      `json:"display_name"`
	Settings    TypeSettings                `json:"settings"`
	Parts       []ContentTypePartDefinition `json:"parts,omitempty"`
}

// ContentTypePartDefinition is the association between a type and a part.
// The part itself is referenced by name; its definition lives standalone.
type ContentTypePartDefinition struct {
	PartName string                 `json:"part_name"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// Part returns the association for the named part, or nil if not attached.
func (d *ContentTypeDefinition) Part(partName string) *ContentTypePartDefinition {
	for i := range d.Parts {
		if d.Parts[i].PartName == partName {
			return &d.Parts[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *ContentTypeDefinition) Clone() *ContentTypeDefinition {
	if d == nil {
		return nil
	}
	out := *d
	if d.Parts != nil {
		out.Parts = make([]ContentTypePartDefinition, len(d.Parts))
		for i, p := range d.Parts {
			out.Parts[i] = p
			if p.Settings != nil {
				settings := make(map[string]interface{}, len(p.Settings))
				for k, v := range p.Settings {
					settings[k] = v
				}
				out.Parts[i].Settings = settings
			}
		}
	}
	return &out
}

// ContentPartDefinition describes a reusable named group of fields. A part may
// be attached to multiple types. A part sharing its name with a type is that
// type's implicit part and is deleted together with the type.
type ContentPartDefinition struct {
	Name     string                       `json:"name"`
	Settings PartSettings                 `json:"settings"`
	Fields   []ContentPartFieldDefinition `json:"fields,omitempty"`
}

// Field returns the field with the given name, or nil if absent.
func (d *ContentPartDefinition) Field(fieldName string) *ContentPartFieldDefinition {
	for i := range d.Fields {
		if d.Fields[i].Name == fieldName {
			return &d.Fields[i]
		}
	}
	return nil
}

// HasFieldNamed reports whether any field name matches the candidate after
// trimming and case folding. Field names are unique under this comparison.
func (d *ContentPartDefinition) HasFieldNamed(candidate string) bool {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	for i := range d.Fields {
		if strings.ToLower(strings.TrimSpace(d.Fields[i].Name)) == candidate {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (d *ContentPartDefinition) Clone() *ContentPartDefinition {
	if d == nil {
		return nil
	}
	out := *d
	if d.Fields != nil {
		out.Fields = make([]ContentPartFieldDefinition, len(d.Fields))
		copy(out.Fields, d.Fields)
	}
	return &out
}

// ContentPartFieldDefinition describes a named, typed leaf attribute belonging
// to a part. FieldTypeName references a registered field type; the field type
// itself is owned by the provider registry, not by the definition.
type ContentPartFieldDefinition struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name,omitempty"`
	FieldTypeName string `json:"field_type_name"`
}

// TypeSummary is the listing shape for a content type definition.
type TypeSummary struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Settings    TypeSettings `json:"settings"`
}

// PartSummary is the listing shape for a part. CodeDefined marks parts that
// are declared by a registered provider and have no standalone persisted
// definition.
type PartSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CodeDefined bool   `json:"code_defined,omitempty"`
}

// PartInfo describes a code-declared part exposed by a PartProvider.
type PartInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// FieldTypeInfo describes a registered field type (e.g. text, number).
type FieldTypeInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}
