// Package match suggests close dictionary names for misspelled properties
// and path segments.
//
// Names are compared after normalization (case folding, separator removal)
// with a normalized Levenshtein score; candidates scoring at or above
// MinScore are suggested, best first.
package match
