package presenter

import (
	"context"
	"errors"
	"os"
	"runtime"

	"github.com/gen2brain/beeep"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// NameDesktop identifies the desktop presenter in config and metrics.
const NameDesktop = "desktop"

// ErrNoDisplay is returned on Linux when neither X11 nor Wayland is reachable.
var ErrNoDisplay = errors.New("no desktop display available")

type notifyFunc func(title, message string) error

// DesktopPresenter raises a native desktop notification per increase.
type DesktopPresenter struct {
	notify    notifyFunc
	hasScreen func() bool
}

func NewDesktopPresenter() *DesktopPresenter {
	return &DesktopPresenter{
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		hasScreen: hasDisplay,
	}
}

func (p *DesktopPresenter) Name() string { return NameDesktop }

func (p *DesktopPresenter) Present(ctx context.Context, inc domain.Increase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.hasScreen() {
		return ErrNoDisplay
	}
	return p.notify(title, Message(inc))
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
