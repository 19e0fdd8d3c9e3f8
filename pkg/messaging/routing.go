package messaging

// DefaultRoute is the routing key consulted when a bookmark carries no
// category.
const DefaultRoute = "_default"

// Table maps a category name to the ordered list of client names its
// bookmarks are delivered to. Built once from configuration and read-only
// afterwards; entries may reference client names absent from the registry.
type Table map[string][]string

// Resolve returns the client names routed for a category, preserving table
// order. An empty category resolves through the DefaultRoute key. A category
// without a rule resolves to nil; there is no fallback from a named category
// to the default route.
func (t Table) Resolve(category string) []string {
	if category == "" {
		category = DefaultRoute
	}
	return t[category]
}
