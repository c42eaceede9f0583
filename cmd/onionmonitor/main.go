// Package main provides the entry point for the onionmonitor CLI.
//
// onionmonitor browses a directory of onion services recorded by an
// external monitor, validates v3 onion addresses and checks that web server
// configurations advertise an onion mirror with a correct Onion-Location
// header.
//
// Usage:
//
//	onionmonitor list -s online
//	onionmonitor check-config /etc/nginx/sites-enabled/example.conf
//
// See --help for all available options.
package main

func main() {
	Execute()
}
