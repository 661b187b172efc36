package compose

import "fmt"

// WeakGenerationError marks a generated letter that failed the quality
// checks. It never leaves the package; the composer recovers with the
// deterministic template.
type WeakGenerationError struct {
	Reason string
}

func (e *WeakGenerationError) Error() string {
	return fmt.Sprintf("generated letter rejected: %s", e.Reason)
}

// NoRecipientFoundError is returned when no plausible application email
// could be resolved for a job. Callers skip the job rather than failing
// the batch.
type NoRecipientFoundError struct {
	Company string
}

func (e *NoRecipientFoundError) Error() string {
	return fmt.Sprintf("no application email found for %s", e.Company)
}
