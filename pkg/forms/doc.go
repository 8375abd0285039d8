/*
Package forms is a small reactive form model: controls, groups of named
controls and arrays of controls.

User edits (SetValue, Push) always notify ValueChanges on the edited node and
on every ancestor. Programmatic writes (PatchValue, Insert, RemoveAt) notify
only when asked to through persistform.PatchOptions, and then only once per
call at the node they were issued on.
*/
package forms
