package auth

import (
	"fmt"
	"strings"
)

// parsePairs parses "left:right,left:right" into a map. Entries are trimmed,
// blank entries are skipped, and the first colon separates the two halves so
// the right side may itself contain colons.
func parsePairs(kind, config string) (map[string]string, error) {
	trimmed := strings.TrimSpace(config)
	if trimmed == "" {
		return nil, fmt.Errorf("%s: %w: config must not be empty", kind, ErrInvalidConfig)
	}

	pairs := make(map[string]string)
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		left, right, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("%s: %w: entry has no colon", kind, ErrInvalidConfig)
		}

		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("%s: %w: both sides of an entry are required", kind, ErrInvalidConfig)
		}

		pairs[left] = right
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s: %w: no entries found", kind, ErrInvalidConfig)
	}

	return pairs, nil
}
