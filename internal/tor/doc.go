// Package tor implements the parts of the Tor v3 onion address format that
// go beyond lexical checks: checksum and version verification, address
// derivation from an ed25519 public key, and extraction of addresses from
// free text.
//
// Nothing in this package opens a network connection.
package tor
