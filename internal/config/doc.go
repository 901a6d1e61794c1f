// Package config builds the immutable Settings of a run.
//
// Settings are layered, lowest precedence first: built-in defaults, the
// optional .seilist.yaml file, an optional dotenv file, the process
// environment (SEI_* variables), and finally CLI flags applied by the
// caller. Credentials are loaded alongside but kept out of Settings.
package config
