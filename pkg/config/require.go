package config

import (
	"fmt"
	"sort"
	"strings"
)

// RequireNonEmpty reports every env name whose value is empty in a single error.
func RequireNonEmpty(values map[string]string) error {
	var missing []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
}
