package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
)

// fakeTransport records payloads and fails with err when set. When release
// is non-nil Send blocks until it is closed.
type fakeTransport struct {
	mu       sync.Mutex
	payloads []domain.OrderPayload
	err      error
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeTransport) Send(_ context.Context, p domain.OrderPayload) error {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeRenderer struct {
	err      error
	rendered []domain.OrderPayload
}

func (r *fakeRenderer) Render(p domain.OrderPayload) (ports.Document, error) {
	if r.err != nil {
		return ports.Document{}, r.err
	}
	r.rendered = append(r.rendered, p)
	return ports.Document{Filename: "pallet-shop-receipt.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}, nil
}

type noticeBoard struct {
	mu       sync.Mutex
	warnings []string
	confirms []string
	errs     []string
}

func (n *noticeBoard) Warn(m string)    { n.mu.Lock(); n.warnings = append(n.warnings, m); n.mu.Unlock() }
func (n *noticeBoard) Confirm(m string) { n.mu.Lock(); n.confirms = append(n.confirms, m); n.mu.Unlock() }
func (n *noticeBoard) Error(m string)   { n.mu.Lock(); n.errs = append(n.errs, m); n.mu.Unlock() }

type form struct {
	fields domain.Buyer
	resets int
}

func (f *form) Reset() {
	f.resets++
	f.fields = domain.Buyer{}
}

type memorySink struct {
	docs []ports.Document
	err  error
}

func (s *memorySink) Deliver(_ context.Context, d ports.Document) error {
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, d)
	return nil
}

// clearFailingStore wraps a store whose Clear always fails.
type clearFailingStore struct {
	ports.CartStore
}

func (clearFailingStore) Clear(context.Context) error { return errors.New("slot locked") }
