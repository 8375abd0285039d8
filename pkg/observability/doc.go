/*
Package observability turns store mutations into metrics and audit logs.

Both Metrics.Hooks and LogHooks produce domain.StoreHooks; combine them with
domain.MergeHooks and pass the result to store.WithHooks.
*/
package observability
