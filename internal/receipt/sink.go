package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

// SlotNamespace prefixes the kv key holding a session's latest receipt.
const SlotNamespace = "receipt"

// FileSink saves documents into a directory under their own file name,
// replacing an older receipt of the same name.
type FileSink struct {
	dir string
}

var _ ports.ReceiptSink = (*FileSink)(nil)

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path is where doc ends up.
func (s *FileSink) Path(doc ports.Document) string {
	return filepath.Join(s.dir, filepath.Base(doc.Filename))
}

func (s *FileSink) Deliver(_ context.Context, doc ports.Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("receipt: file sink: %w", err)
	}
	if err := os.WriteFile(s.Path(doc), doc.Content, 0o644); err != nil {
		return fmt.Errorf("receipt: file sink: %w", err)
	}
	return nil
}

type storedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// SlotSink keeps the latest document of one session in a kv slot so the
// storefront can serve it for download.
type SlotSink struct {
	slots kv.Store
	key   string
}

var (
	_ ports.ReceiptSink      = (*SlotSink)(nil)
	_ ports.ReceiptDiscarder = (*SlotSink)(nil)
)

func NewSlotSink(slots kv.Store, session string) *SlotSink {
	return &SlotSink{slots: slots, key: kv.Key(SlotNamespace, session)}
}

func (s *SlotSink) Deliver(ctx context.Context, doc ports.Document) error {
	raw, err := json.Marshal(storedDocument(doc))
	if err != nil {
		return fmt.Errorf("receipt: encode: %w", err)
	}
	if err := s.slots.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("receipt: slot sink: %w", err)
	}
	return nil
}

// Discard drops the stored document so Latest reports none.
func (s *SlotSink) Discard(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("receipt: slot sink: %w", err)
	}
	return nil
}

// Latest returns the last delivered document, if any.
func (s *SlotSink) Latest(ctx context.Context) (ports.Document, bool, error) {
	raw, found, err := s.slots.Get(ctx, s.key)
	if err != nil {
		return ports.Document{}, false, fmt.Errorf("receipt: slot sink: %w", err)
	}
	if !found {
		return ports.Document{}, false, nil
	}
	var d storedDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return ports.Document{}, false, fmt.Errorf("receipt: decode: %w", err)
	}
	return ports.Document(d), true, nil
}
