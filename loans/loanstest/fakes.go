package loanstest

import (
	"context"
	"fmt"
	"sync"

	"Gin_postgres_redis_loan_inventory/loans"
)

// Effects records post-commit effects synchronously.
type Effects struct {
	mu      sync.Mutex
	audits  []loans.AuditEntry
	deleted []string
}

func (e *Effects) Audit(a loans.AuditEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audits = append(e.audits, a)
}

func (e *Effects) DeleteSignature(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleted = append(e.deleted, url)
}

func (e *Effects) Audits() []loans.AuditEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]loans.AuditEntry(nil), e.audits...)
}

func (e *Effects) DeletedSignatures() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.deleted...)
}

// Signatures keeps images in memory under mem:// URLs.
type Signatures struct {
	mu    sync.Mutex
	n     int
	files map[string][]byte

	SaveErr   error
	DeleteErr error
}

func (s *Signatures) Save(_ context.Context, image []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.n++
	url := fmt.Sprintf("mem://signatures/%d.png", s.n)
	s.files[url] = append([]byte(nil), image...)
	return url, nil
}

func (s *Signatures) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.files, url)
	return nil
}

func (s *Signatures) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[url]
	return ok
}

// Recorder is an AuditRecorder keeping entries in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []loans.AuditEntry
	Err     error
}

func (r *Recorder) Record(_ context.Context, e loans.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *Recorder) Entries() []loans.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]loans.AuditEntry(nil), r.entries...)
}
