package adminclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
)

// BoardAPI is the subset of Client the board needs
type BoardAPI interface {
	ListDocuments(ctx context.Context, q DocumentQuery) (*Page[domain.DocumentDTO], error)
	ListQuotes(ctx context.Context, q QuoteQuery) (*Page[domain.QuoteDTO], error)
	UpdateDocument(ctx context.Context, id uuid.UUID, req *domain.UpdateDocumentRequest) (*domain.DocumentDTO, error)
	UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.QuoteDTO, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// ErrNotLoaded is returned when a mutation targets an entry the board does not hold
var ErrNotLoaded = errors.New("entry not loaded")

// Board caches the admin lists of documents and quote requests. Status
// changes and deletes are applied locally before the server confirms them.
// Each mutation takes a per-entry sequence number; a response that arrives
// after a newer mutation of the same entry does not touch the shown entry.
// The last state the server confirmed is kept per entry, and a failed
// mutation restores that state rather than whatever was shown before it.
type Board struct {
	api BoardAPI

	mu         sync.RWMutex
	documents  map[uuid.UUID]domain.DocumentDTO
	docOrder   []uuid.UUID
	quotes     map[uuid.UUID]domain.QuoteDTO
	quoteOrder []uuid.UUID
	seq        map[uuid.UUID]uint64

	confirmedDocs   map[uuid.UUID]domain.DocumentDTO
	confirmedQuotes map[uuid.UUID]domain.QuoteDTO
	docQuery   DocumentQuery
	quoteQuery QuoteQuery
}

// NewBoard creates an empty board
func NewBoard(api BoardAPI) *Board {
	return &Board{
		api:       api,
		documents: make(map[uuid.UUID]domain.DocumentDTO),
		quotes:    make(map[uuid.UUID]domain.QuoteDTO),
		seq:       make(map[uuid.UUID]uint64),

		confirmedDocs:   make(map[uuid.UUID]domain.DocumentDTO),
		confirmedQuotes: make(map[uuid.UUID]domain.QuoteDTO),
	}
}

// LoadDocuments replaces the cached documents with one page from the server
func (b *Board) LoadDocuments(ctx context.Context, q DocumentQuery) error {
	page, err := b.api.ListDocuments(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.docQuery = q
	b.documents = make(map[uuid.UUID]domain.DocumentDTO, len(page.Data))
	b.docOrder = make([]uuid.UUID, 0, len(page.Data))
	b.confirmedDocs = make(map[uuid.UUID]domain.DocumentDTO, len(page.Data))
	for _, doc := range page.Data {
		b.documents[doc.ID] = doc
		b.confirmedDocs[doc.ID] = doc
		b.docOrder = append(b.docOrder, doc.ID)
	}
	return nil
}

// LoadQuotes replaces the cached quote requests with one page from the server
func (b *Board) LoadQuotes(ctx context.Context, q QuoteQuery) error {
	page, err := b.api.ListQuotes(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to load quotes: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.quoteQuery = q
	b.quotes = make(map[uuid.UUID]domain.QuoteDTO, len(page.Data))
	b.quoteOrder = make([]uuid.UUID, 0, len(page.Data))
	b.confirmedQuotes = make(map[uuid.UUID]domain.QuoteDTO, len(page.Data))
	for _, quote := range page.Data {
		b.quotes[quote.ID] = quote
		b.confirmedQuotes[quote.ID] = quote
		b.quoteOrder = append(b.quoteOrder, quote.ID)
	}
	return nil
}

// Reload fetches both lists again with the last used filters
func (b *Board) Reload(ctx context.Context) error {
	b.mu.RLock()
	dq, qq := b.docQuery, b.quoteQuery
	b.mu.RUnlock()

	return errors.Join(b.LoadDocuments(ctx, dq), b.LoadQuotes(ctx, qq))
}

// Documents returns the cached documents in server order
func (b *Board) Documents() []domain.DocumentDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.DocumentDTO, 0, len(b.docOrder))
	for _, id := range b.docOrder {
		if doc, ok := b.documents[id]; ok {
			out = append(out, doc)
		}
	}
	return out
}

// Quotes returns the cached quote requests in server order
func (b *Board) Quotes() []domain.QuoteDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.QuoteDTO, 0, len(b.quoteOrder))
	for _, id := range b.quoteOrder {
		if quote, ok := b.quotes[id]; ok {
			out = append(out, quote)
		}
	}
	return out
}

func (b *Board) Document(id uuid.UUID) (domain.DocumentDTO, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.documents[id]
	return doc, ok
}

func (b *Board) Quote(id uuid.UUID) (domain.QuoteDTO, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	quote, ok := b.quotes[id]
	return quote, ok
}

// next bumps the sequence of an entry; callers hold mu
func (b *Board) next(id uuid.UUID) uint64 {
	b.seq[id]++
	return b.seq[id]
}

// current reports whether seq is still the latest mutation of id; callers hold mu
func (b *Board) current(id uuid.UUID, seq uint64) bool {
	return b.seq[id] == seq
}

// SetDocumentStatus marks an invoice draft, sent or paid. The board shows the
// new status at once and restores the last confirmed entry if the server
// refuses. A refusal is returned even when a newer change has superseded it.
func (b *Board) SetDocumentStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	b.mu.Lock()
	prev, ok := b.documents[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: document %s", ErrNotLoaded, id)
	}
	seq := b.next(id)
	optimistic := prev
	optimistic.Status = status
	optimistic.StatusLabel = domain.StatusLabel(prev.DocumentType, status)
	b.documents[id] = optimistic
	b.mu.Unlock()

	raw := string(status)
	updated, err := b.api.UpdateDocument(ctx, id, &domain.UpdateDocumentRequest{Status: &raw})

	b.mu.Lock()
	defer b.mu.Unlock()
	latest := b.current(id, seq)
	if err != nil {
		if latest {
			if confirmed, ok := b.confirmedDocs[id]; ok {
				if _, shown := b.documents[id]; shown {
					b.documents[id] = confirmed
				}
			}
		}
		return err
	}
	b.confirmedDocs[id] = *updated
	if _, shown := b.documents[id]; shown && latest {
		b.documents[id] = *updated
	}
	return nil
}

// SetQuoteStatus moves a quote request, optimistically like SetDocumentStatus
func (b *Board) SetQuoteStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	b.mu.Lock()
	prev, ok := b.quotes[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: quote %s", ErrNotLoaded, id)
	}
	seq := b.next(id)
	optimistic := prev
	optimistic.Status = status
	b.quotes[id] = optimistic
	b.mu.Unlock()

	updated, err := b.api.UpdateQuoteStatus(ctx, id, status)

	b.mu.Lock()
	defer b.mu.Unlock()
	latest := b.current(id, seq)
	if err != nil {
		if confirmed, ok := b.confirmedQuotes[id]; ok && latest {
			b.quotes[id] = confirmed
		}
		return err
	}
	b.confirmedQuotes[id] = *updated
	if latest {
		b.quotes[id] = *updated
	}
	return nil
}

// DeleteDocument removes a document from the board before the server
// confirms. On failure the board reloads so it matches the server again.
func (b *Board) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	if _, ok := b.documents[id]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: document %s", ErrNotLoaded, id)
	}
	seq := b.next(id)
	delete(b.documents, id)
	b.mu.Unlock()

	err := b.api.DeleteDocument(ctx, id)
	if err == nil {
		b.mu.Lock()
		delete(b.confirmedDocs, id)
		b.mu.Unlock()
		return nil
	}

	b.mu.RLock()
	stale := !b.current(id, seq)
	q := b.docQuery
	b.mu.RUnlock()
	if stale {
		return err
	}
	return errors.Join(err, b.LoadDocuments(ctx, q))
}
