package output

import (
	"fmt"
	"strings"
	"time"
)

// Document wraps generated minutes in a dated markdown document.
func Document(title, minutes string) string {
	return fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		title,
		time.Now().Format("2006-01-02 15:04"),
		strings.TrimSpace(minutes),
	)
}
