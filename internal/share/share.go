// Package share implements the report's share action: the host's native
// share capability when there is one, the clipboard otherwise.
package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
)

const (
	DefaultTitle = "Análise de Avatar"
	DefaultText  = "Confira esta análise completa de avatar"
	CopiedMsg    = "Link copiado para a área de transferência!"
)

// ErrUnsupported is returned by a NativeSharer that cannot share on the
// current host. It selects the clipboard fallback and is never surfaced.
var ErrUnsupported = errors.New("native share not supported")

// Target is what gets shared: the current page reference.
type Target struct {
	Title string
	Text  string
	URL   string
}

type NativeSharer interface {
	Share(ctx context.Context, t Target) error
}

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not available on this system")
	}
	return clipboard.WriteAll(text)
}

type Method string

const (
	MethodNative    Method = "native"
	MethodClipboard Method = "clipboard"
)

type Sharer struct {
	Native    NativeSharer
	Clipboard Clipboard
	Notifier  *notify.Notifier
}

func New(native NativeSharer, cb Clipboard, n *notify.Notifier) *Sharer {
	if cb == nil {
		cb = SystemClipboard{}
	}
	return &Sharer{Native: native, Clipboard: cb, Notifier: n}
}

// Share hands t to the native capability if present. A missing or
// unsupported capability falls back to copying t.URL to the clipboard,
// followed by a success notification.
func (s *Sharer) Share(ctx context.Context, t Target) (Method, error) {
	if t.Title == "" {
		t.Title = DefaultTitle
	}
	if t.Text == "" {
		t.Text = DefaultText
	}

	if s.Native != nil {
		err := s.Native.Share(ctx, t)
		if err == nil {
			return MethodNative, nil
		}
		if !errors.Is(err, ErrUnsupported) {
			return MethodNative, fmt.Errorf("native share: %w", err)
		}
	}

	if err := s.Clipboard.WriteAll(t.URL); err != nil {
		s.Notifier.Error("Não foi possível copiar o link")
		return MethodClipboard, fmt.Errorf("copy to clipboard: %w", err)
	}
	s.Notifier.Success(CopiedMsg)
	return MethodClipboard, nil
}
