// Package gitops validates portal configuration (gitops.json) documents.
//
// Validation runs three stages in order:
//
//  1. syntax: required fields are present (fail-fast);
//  2. dictionary: every node named by graphql counts and homepage charts
//     exists in the dictionary;
//  3. etl: every field the portal displays is produced by the ETL mapping.
//
// The first two stages are preconditions and abort with ErrSyntax or
// ErrDictionary. The last one collects every problem it finds.
package gitops
