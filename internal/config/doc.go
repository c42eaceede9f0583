// Package config holds the onionmonitor configuration: built-in defaults,
// the optional .onionmonitor YAML file and the XDG locations of the
// snapshot file and the history database.
package config
