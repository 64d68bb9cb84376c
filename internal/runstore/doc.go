// Package runstore keeps a SQLite history of merge runs.
//
// Each run stores its inputs, counts, and one row per quotation describing
// whether and how it was matched, so failures can be reviewed after the
// terminal output is gone. Schema changes ship as embedded SQL migrations
// applied on Open.
package runstore
