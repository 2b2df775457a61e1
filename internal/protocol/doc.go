// Package protocol decodes tag=value wire records into field maps.
//
// Ownership boundary:
// - top-level tag/value decode
// - repeating group expansion
// - decoded message model and typed accessors
//
// Byte scanning lives in tagvalue, dictionaries and group layouts in schema.
package protocol
