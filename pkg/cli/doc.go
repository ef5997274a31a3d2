// Package cli implements the denoid command-line tool.
//
// # Commands
//
// list: print the modules served by a denoid server
//
//	denoid list -q http
//	denoid list -json
//
// show: print a module and its import statement
//
//	denoid show -branch v1.2.0 oak
//
// browse: search modules in an interactive terminal browser
//
//	denoid browse
//
// snapshot: fetch the configured provider once and persist the snapshot,
// using the same DENOID_* environment as the server
//
//	DENOID_PROVIDER=file DENOID_FILE_PATH=modules.yaml denoid snapshot -print
//
// The server URL defaults to DENOID_SERVER_URL or http://localhost:8080 and
// can be overridden per command with -server.
package cli
