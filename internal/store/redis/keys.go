package redis

import "strings"

const (
	// KeyPrefixRun is the prefix for the last run report of a root namespace
	KeyPrefixRun = "d2f:run:"
	// KeyPrefixObjects is the prefix for the about -> object id hash of a root namespace
	KeyPrefixObjects = "d2f:objects:"
	// KeyAllRoots is the key for the set of journaled root namespaces
	KeyAllRoots = "d2f:roots:all"
)

// RunKey returns the Redis key for the last run report of root
func RunKey(root string) string {
	return KeyPrefixRun + normalizeRoot(root)
}

// ObjectsKey returns the Redis key for the object map of root
func ObjectsKey(root string) string {
	return KeyPrefixObjects + normalizeRoot(root)
}

// AllRootsKey returns the key for the set of journaled roots
func AllRootsKey() string {
	return KeyAllRoots
}

func normalizeRoot(root string) string {
	return strings.Trim(root, "/")
}
