// Package debounce provides a manual commit gate that separates "value
// changed" from "value accepted".
//
// A Gate holds two values. Set records the latest pending input and Commit
// promotes it to the committed value. There is no timer: the consumer decides
// when to commit, typically on an Enter key or a form submission. Listeners
// registered with OnCommit run once per commit that actually changes the
// committed value, so dependents re-render exactly once.
//
//	gate := debounce.New("")
//	gate.Set("oak")
//	gate.Commit()    // true, committed is now "oak"
//	gate.Commit()    // false, nothing new to promote
package debounce
