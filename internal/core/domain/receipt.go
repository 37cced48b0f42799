package domain

import "time"

// BuildReceipt records the outcome of a completed pipeline stage. Receipts are
// written only after a stage has fully succeeded, so their presence is the
// proof that an artifact was promoted; a missing receipt means the artifact
// must not be trusted.
type BuildReceipt struct {
	Key         string        `json:"key,omitzero"`
	State       PipelineState `json:"state,omitzero"`
	LockID      string        `json:"lock_id,omitzero"`
	Fingerprint string        `json:"fingerprint,omitzero"`
	Timestamp   time.Time     `json:"timestamp,omitzero"`
}
