// Package game provides the types for NBA game records returned by the scores API.
//
// Records are decoded verbatim from the provider response and never mutated.
// Scores keep their raw JSON so that missing or non-numeric values are detected
// when a record is inspected rather than when the whole response is decoded.
package game
