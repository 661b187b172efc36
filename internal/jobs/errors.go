package jobs

import (
	"fmt"
	"strings"
)

// AllSourcesFailedError is returned when every configured board failed
// all of its retry attempts within one aggregation run.
type AllSourcesFailedError struct {
	Sources []string
}

func (e *AllSourcesFailedError) Error() string {
	return fmt.Sprintf("all job sources failed: %s", strings.Join(e.Sources, ", "))
}
