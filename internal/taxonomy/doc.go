// Package taxonomy defines the fixed tag vocabulary for concert
// classification: tag categories, the composer era map, spelling alias
// normalization, and the finalization pipeline that guarantees outputs stay
// inside the whitelist.
package taxonomy
