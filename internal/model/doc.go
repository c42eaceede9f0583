// Package model defines the data structures shared by the directory and the
// Onion-Location validator.
//
// This package contains the following main types:
//   - Service: one onion service entry of the directory snapshot
//   - Status: the raw health string, classified by Classify into a DisplayClass
//   - OnionAddress: a lexically validated v3 onion address
//   - Severity: the weight of a configuration advisory
//
// Everything here is a value type or a pure function; nothing holds state.
package model
