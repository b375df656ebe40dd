package cache

import (
	"fmt"
	"strings"
)

// Key builds a "{prefix}_{operation}_{argument}" cache key
func Key(prefix, operation string, args ...interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return prefix + "_" + operation + "_" + strings.Join(parts, "|")
}

// Prefix returns the prefix shared by every key of a repository
func Prefix(prefix string) string {
	return prefix + "_"
}
