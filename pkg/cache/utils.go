package cache

import (
	"fmt"
	"strings"
)

// Key joins prefix and params with ':', e.g. Key("news", "btc", 20) is "news:btc:20".
func Key(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}
