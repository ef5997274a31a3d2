// Package bootstrap turns a validated configuration into the module
// provider and snapshot store shared by the server and the CLI.
package bootstrap
