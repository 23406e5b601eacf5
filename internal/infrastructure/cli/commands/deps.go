package commands

import (
	"context"
	"errors"
	"sync"

	"github.com/doeshing/vino-go/internal/app"
	configinfra "github.com/doeshing/vino-go/internal/infrastructure/config"
)

// ErrReported marks a failure that was already shown to the user.
var ErrReported = errors.New("reported")

// Deps builds the container on first use, after cobra has parsed the
// persistent flags that shape it.
type Deps struct {
	Options app.Options

	once      sync.Once
	container *app.Container
	err       error
}

// NewDeps returns Deps that build a container from opts.
func NewDeps(opts app.Options) *Deps {
	return &Deps{Options: opts}
}

// NewDepsWithContainer returns Deps around an already built container.
func NewDepsWithContainer(c *app.Container) *Deps {
	d := &Deps{container: c}
	d.once.Do(func() {})
	return d
}

// Container returns the shared container.
func (d *Deps) Container(ctx context.Context) (*app.Container, error) {
	d.once.Do(func() {
		d.container, d.err = app.BuildContainer(ctx, d.Options)
	})
	return d.container, d.err
}

// ConfigLoader returns a loader for the configured path without building the
// rest of the container, so config commands work on a broken config.
func (d *Deps) ConfigLoader() *configinfra.FileLoader {
	if d.container != nil && d.container.ConfigLoader != nil {
		return d.container.ConfigLoader
	}
	return configinfra.NewFileLoader(d.Options.ConfigPath)
}

// Close releases resources held by the container, if one was built.
func (d *Deps) Close() error {
	if d.container == nil {
		return nil
	}
	return d.container.Close()
}
