package contentdef

// Request DTOs

// AddFieldRequest contains parameters for committing a field onto a part.
//
// FieldName is sanitized before commit and must not be empty afterwards.
// PartName may also be a type name when the field is added to the type's
// implicit part. If DisplayName is empty the sanitized field name is used.
type AddFieldRequest struct {
	PartName      string
	FieldName     string
	DisplayName   string
	FieldTypeName string
}
