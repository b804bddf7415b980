// Package catalog persists concert records and their classification state
// in SQLite. The pipeline selects pending items from here and writes the
// final tag set, keywords, and review flag back.
package catalog
