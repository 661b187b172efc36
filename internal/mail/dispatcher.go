package mail

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rafael/autoapply/internal/types"
)

// Batch limits, mirroring the application cap enforced at the API edge.
const (
	// MaxBatchSize caps how many drafts one dispatch call accepts.
	MaxBatchSize = 5
	// sendPacing is the pause between consecutive sends, keeping the
	// outgoing rate polite toward recruiter inboxes and the transports.
	sendPacing = 2 * time.Second
)

// Recorder persists application outcomes. A nil recorder disables
// persistence without changing dispatch behavior.
type Recorder interface {
	RecordApplication(ctx context.Context, draft *types.ApplicationDraft) error
}

// Dispatcher sends application drafts through a primary transport with
// one fallback. Per-draft failures mark the draft failed and continue;
// the batch itself only fails on invalid input.
type Dispatcher struct {
	primary  Sender
	fallback Sender
	recorder Recorder
	// pace is swapped in tests to avoid real sleeps.
	pace func(time.Duration)
}

// NewDispatcher builds a dispatcher. fallback and recorder may be nil.
func NewDispatcher(primary, fallback Sender, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		primary:  primary,
		fallback: fallback,
		recorder: recorder,
		pace:     time.Sleep,
	}
}

// Dispatch sends every draft in order, updating each draft's Status in
// place, and returns the drafts for reporting. Drafts without a resolved
// recipient are marked failed without a send attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, profile *types.CandidateProfile, drafts []*types.ApplicationDraft, resume *Attachment) ([]*types.ApplicationDraft, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("no drafts to dispatch")
	}
	if len(drafts) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds the %d application limit", len(drafts), MaxBatchSize)
	}

	for i, draft := range drafts {
		if i > 0 {
			d.pace(sendPacing)
		}
		if err := ctx.Err(); err != nil {
			return drafts, err
		}

		if draft.Recipient == "" {
			draft.Status = types.StatusFailed
			d.record(ctx, draft)
			continue
		}

		msg := Message{
			To:      draft.Recipient,
			Subject: draft.Subject,
			HTML:    BuildHTML(profile, draft),
		}
		if resume != nil {
			msg.Attachments = append(msg.Attachments, *resume)
		}

		if err := d.send(ctx, msg); err != nil {
			log.Printf("[mail] send failed for %s at %s: %v", draft.Job.Title, draft.Job.Company, err)
			draft.Status = types.StatusFailed
		} else {
			log.Printf("[mail] sent application for %s at %s to %s", draft.Job.Title, draft.Job.Company, draft.Recipient)
			draft.Status = types.StatusSent
		}
		d.record(ctx, draft)
	}

	return drafts, nil
}

// send tries the primary transport, then the fallback.
func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if d.primary == nil && d.fallback == nil {
		return fmt.Errorf("no mail transport configured")
	}

	var primaryErr error
	if d.primary != nil {
		primaryErr = d.primary.Send(ctx, msg)
		if primaryErr == nil {
			return nil
		}
	}

	if d.fallback != nil {
		if d.primary != nil {
			log.Printf("[mail] %s failed, trying %s: %v", d.primary.Name(), d.fallback.Name(), primaryErr)
		}
		if err := d.fallback.Send(ctx, msg); err != nil {
			return fmt.Errorf("all transports failed: %w", err)
		}
		return nil
	}
	return primaryErr
}

func (d *Dispatcher) record(ctx context.Context, draft *types.ApplicationDraft) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordApplication(ctx, draft); err != nil {
		log.Printf("[mail] failed to record application %s: %v", draft.ID, err)
	}
}
