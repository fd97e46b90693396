package share

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeNative struct {
	err  error
	got  Target
	hits int
}

func (n *fakeNative) Share(_ context.Context, t Target) error {
	n.hits++
	n.got = t
	return n.err
}

func TestShareUsesNativeCapability(t *testing.T) {
	native := &fakeNative{}
	cb := &fakeClipboard{}
	rec := &notify.Recorder{}
	s := New(native, cb, notify.New(rec, 0))

	method, err := s.Share(context.Background(), Target{URL: "http://localhost/r/1"})
	require.NoError(t, err)
	assert.Equal(t, MethodNative, method)
	assert.Equal(t, DefaultTitle, native.got.Title)
	assert.Equal(t, DefaultText, native.got.Text)
	assert.Empty(t, cb.text)
	assert.Empty(t, rec.All())
}

func TestShareFallsBackToClipboard(t *testing.T) {
	tests := []struct {
		name   string
		native NativeSharer
	}{
		{"no capability", nil},
		{"unsupported", &fakeNative{err: ErrUnsupported}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := &fakeClipboard{}
			rec := &notify.Recorder{}
			s := New(tt.native, cb, notify.New(rec, 0))

			method, err := s.Share(context.Background(), Target{URL: "http://localhost/r/1"})
			require.NoError(t, err)
			assert.Equal(t, MethodClipboard, method)
			assert.Equal(t, "http://localhost/r/1", cb.text)

			last, ok := rec.Last()
			require.True(t, ok)
			assert.Equal(t, notify.Success, last.Severity)
			assert.Equal(t, CopiedMsg, last.Message)
			assert.Equal(t, notify.DefaultDuration, last.Duration)
		})
	}
}

func TestShareNativeFailureIsNotMasked(t *testing.T) {
	native := &fakeNative{err: errors.New("cancelled")}
	cb := &fakeClipboard{}
	s := New(native, cb, nil)

	_, err := s.Share(context.Background(), Target{URL: "u"})
	require.Error(t, err)
	assert.Empty(t, cb.text)
}

func TestShareClipboardFailure(t *testing.T) {
	rec := &notify.Recorder{}
	s := New(nil, &fakeClipboard{err: errors.New("no display")}, notify.New(rec, 0))

	method, err := s.Share(context.Background(), Target{URL: "u"})
	require.Error(t, err)
	assert.Equal(t, MethodClipboard, method)
	last, _ := rec.Last()
	assert.Equal(t, notify.Error, last.Severity)
}
