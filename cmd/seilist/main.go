// Package main provides the entry point for the seilist CLI.
//
// seilist signs in to the SEI-MG portal, opens the process control screen
// of a unit and exports every listed process (Recebidos and Gerados) to a
// spreadsheet.
//
// Usage:
//
//	seilist [saida.xlsx]
//	seilist list --saida ./saida/ --table
//	seilist history diff
//
// See --help for all available options.
package main

import "os"

// main is the entry point for seilist.
func main() {
	os.Exit(Execute())
}
