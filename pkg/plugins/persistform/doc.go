/*
Package persistform keeps a form and a part of a store's state in sync.

A Target picks where the form value lives:

  - RootKeys: every control name is a top-level state key.
  - Key: the record at a dotted path is the form value.
  - Factory: the value lives under a fixed top-level key ("akitaForm" by
    default) and starts from a factory.

SetForm seeds the form once from the store (or seeds the store from the form
or the factory when it has nothing yet). Every change of the form is then
debounced and written back with the action "@PersistForm - Update". The store
is never pushed into the form again except by Reset. Programmatic patches are
silent on the form's ValueChanges unless WithEmitEvent(true) is given, and the
plugin never listens while it patches, so a write can not loop back.
*/
package persistform
