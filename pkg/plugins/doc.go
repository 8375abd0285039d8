/*
Package plugins defines how behaviour is attached to a store or query.

A plugin holds non-owning references to a query and its store and owns its
own subscriptions. It must be destroyed to release them. Use scopes a plugin
to a function call; a Host owns several plugins and destroys them together;
BindLifecycle ties a plugin to any host announcing its own destruction.
*/
package plugins
