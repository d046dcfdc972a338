// Package contentdef provides the definition-management core of a
// content-modeling subsystem: a service for composing content types out of
// reusable parts and fields without redeploying code.
//
// It exposes a single Service interface that orchestrates creation, alteration
// and removal of type, part and field definitions over a pluggable
// DefinitionStore, enforces naming and uniqueness rules, cascades structural
// deletes in a defined order, and fans post-commit change notifications out to
// a ChangeNotifier. Store implementations (memory, Postgres, SQLite, cached)
// live under subpackages.
//
// Definitions are metadata records describing the shape of content, not the
// content itself. Content items are reached only through the ContentItemStore
// collaborator, and only when a type is removed together with its content.
package contentdef
