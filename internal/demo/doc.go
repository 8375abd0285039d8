// Package demo holds the three scenarios driven by the statekit CLI: a todo
// list with visibility filters, a widget table under dirty checking and a
// story editor whose forms persist into a store.
package demo
