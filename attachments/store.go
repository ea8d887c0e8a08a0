package attachments

import (
	"sync"

	"github.com/google/uuid"
)

// StagedAttachment is an uploaded or scanned binary payload held in memory
// pending association with a business record.
type StagedAttachment struct {
	ID          string
	UserID      string
	Media       []byte
	ContentType string
	Length      int
	Title       string
	Preview     string // base64 jpeg of page 1
}

// Store maps staged attachment ids to pending payloads. Entries are
// removed only by a successful commit; an entry that is never committed
// stays for the process lifetime.
type Store struct {
	mu     sync.Mutex
	staged map[string]*StagedAttachment
}

func NewStore() *Store {
	return &Store{staged: make(map[string]*StagedAttachment)}
}

// Put assigns an opaque unique id and stages the attachment.
func (s *Store) Put(attachment *StagedAttachment) string {
	attachment.ID = uuid.NewString()
	s.mu.Lock()
	s.staged[attachment.ID] = attachment
	s.mu.Unlock()
	return attachment.ID
}

func (s *Store) Get(id string) (*StagedAttachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attachment, ok := s.staged[id]
	return attachment, ok
}

// Remove deletes a staged entry. Removing is the only mutation after Put,
// so two commits racing on the same id resolve to exactly one winner; the
// loser simply no longer finds the entry.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.staged, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}
