package sexpmsgcheck

import (
	"fmt"
	"sort"
	"strings"
)

// stringMap is a repeatable flag of key=value pairs.
type stringMap map[string]string

func (m *stringMap) String() string {
	var pairs []string
	for k, v := range *m {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (m *stringMap) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
		return fmt.Errorf("want type=conversion, got %q", s)
	}
	if *m == nil {
		*m = make(stringMap)
	}
	(*m)[strings.TrimSpace(k)] = strings.TrimSpace(v)
	return nil
}
