// Package browse is a terminal module browser built on bubbletea.
//
// Keystrokes edit a pending search query; Enter commits it and re-filters
// the list, Esc clears it. The footer shows the import URL of the module
// under the cursor.
package browse
