// Package item defines the content node the publish pipeline operates on,
// including its shared property mapping and per-plugin local scopes.
package item
