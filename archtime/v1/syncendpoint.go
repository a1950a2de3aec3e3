package v1

type SyncEndpoint struct {
	transport *Transport
}

// PendingEntryDTO is one queued offline event in replay form.
type PendingEntryDTO struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	ProjectID *string `json:"projectId,omitempty"`
	EntryID   *string `json:"entryId,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// Apply replays one queued event against the server. A nil error means the
// server acknowledged the event (including idempotent re-deliveries).
func (e *SyncEndpoint) Apply(entry *PendingEntryDTO) error {
	_, err := e.transport.Post("/sync", entry)
	return err
}
