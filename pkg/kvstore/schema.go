package kvstore

import "fmt"

// Logical key layout
//
// Components address documents by logical key. Backends may decorate the key
// (RedisStore prefixes it with kanban:{namespace}:) but Keys always returns
// logical keys.

const (
	// BoardKeyPrefix prefixes every board snapshot key.
	BoardKeyPrefix = "board-"

	// SearchCacheKey holds the map of query -> {results, timestamp}.
	SearchCacheKey = "pm-search-cache"

	// OfflineActionsKey holds the ordered list of pending offline actions.
	OfflineActionsKey = "pm-offline-actions"

	// ThemeKey holds the theme preference: light, dark or system.
	ThemeKey = "pm-theme"
)

// BoardKey returns the key for a board snapshot.
// Pattern: board-{board_id}
func BoardKey(boardID string) string {
	return BoardKeyPrefix + boardID
}

// RedisKey returns the namespaced Redis key for a logical key.
// Pattern: kanban:{namespace}:{key}
func RedisKey(namespace, key string) string {
	return fmt.Sprintf("kanban:%s:%s", namespace, key)
}
