// Package directory implements the onion service directory: the filter and
// search engine over a snapshot of service records, plus the collaborators
// that load, check, import, merge and diff snapshots.
//
// Filter and Counts are pure functions of their inputs. A snapshot is never
// modified in place; every operation returns a new slice.
package directory
