// Package archive keeps a local SQLite record of every session.
//
// The CSV logfile stays the authoritative output; the archive adds a
// queryable history for the station (per-condition summaries) and a cache of
// extracted acoustic features keyed by file identity, so repeated sessions
// over the same stimulus set skip the analysis. The schema is embedded and
// versioned; a version mismatch asks the operator to delete the database.
package archive
