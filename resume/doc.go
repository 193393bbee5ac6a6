// Package resume defines the person record a résumé is built from.
//
// The record is read from YAML. The same schema stores a resolved record in
// the cache: projects become ordered manual entries followed by a manual
// sort, references become plain strings and publications become text with
// an optional year, so a cached record renders without network access.
//
// Durations use the form "YYYY-MM~YYYY-MM", or "YYYY-MM~" for a period
// that has not ended.
package resume
