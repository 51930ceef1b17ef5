// Package db provides the SQLite storage layer of the RSVP service.
//
// A single Repository value implements every repository interface of the domain
// package: guests, families, photo metadata, vote audits and statistics. Rows are
// read into db-specific structs using sql.Null* types for nullable columns and
// converted to their domain counterparts.
//
// Schema changes live in migrations/ and are applied with goose when the database
// is opened. Early migrations are idempotent so that databases created before
// migrations were tracked can be brought up to date in place.
package db
