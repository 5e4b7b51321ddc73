package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowdeck/viewer/setupctx"
)

type fakeHost struct {
	disposers []func()
	mounted   []func()
}

func (h *fakeHost) RegisterDisposer(fn func())   { h.disposers = append(h.disposers, fn) }
func (h *fakeHost) RegisterOnMounted(fn func())  { h.mounted = append(h.mounted, fn) }

func TestOnCleanupRegistersOnActiveHost(t *testing.T) {
	h := &fakeHost{}
	setupctx.RunWith(h, func() {
		OnCleanup(func() {})
	})
	assert.Len(t, h.disposers, 1)
}

func TestOnMountedRegistersOnActiveHost(t *testing.T) {
	h := &fakeHost{}
	setupctx.RunWith(h, func() {
		OnMounted(func() {})
	})
	assert.Len(t, h.mounted, 1)
}

func TestOnCleanupOutsideSetupPanics(t *testing.T) {
	assert.Panics(t, func() { OnCleanup(func() {}) })
}
