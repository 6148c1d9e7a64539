// Package configwatcher provides config file monitoring for walletscope.
// When enabled, it watches the TOML config file and applies changes to the
// [tracking] table to the running client.
package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/walletscope/internal/cliconfig"
	"github.com/bft-labs/walletscope/internal/ports"
	"github.com/bft-labs/walletscope/pkg/walletscope"
)

// Plugin implements config watching functionality.
// It monitors one TOML file and re-applies its tracking flags whenever the
// file is written.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	onApply       func(walletscope.Tracking, error)

	// Runtime state
	client   walletscope.Reconfigurer
	logger   walletscope.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML file to watch. Empty disables the plugin.
	Path string

	// DebounceDelay is the delay to wait after a file change before applying.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnApply is called after every reload attempt.
	OnApply func(t walletscope.Tracking, err error)
}

// DefaultConfig returns a Config watching path with default settings.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		onApply:       cfg.OnApply,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file.
func (p *Plugin) Initialize(ctx context.Context, cfg walletscope.PluginConfig) error {
	p.mu.Lock()
	p.client = cfg.Client
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" || p.client == nil {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceApply(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceApply(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.apply()
	})
}

// apply reloads the file and reconfigures the client when the tracking
// flags changed.
func (p *Plugin) apply() {
	current := p.client.Tracking()

	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Debug("config watcher: file removed", ports.String("path", p.path))
		} else {
			p.logger.Warn("config watcher: reload failed", ports.Err(err))
		}
		p.notify(current, err)
		return
	}

	next := fc.Tracking.Apply(current)
	if next == current {
		p.notify(current, nil)
		return
	}

	if err := p.client.Reconfigure(next); err != nil {
		p.logger.Warn("config watcher: reconfigure failed", ports.Err(err))
		p.notify(current, err)
		return
	}
	p.logger.Info("config watcher: tracking updated")
	p.notify(next, nil)
}

func (p *Plugin) notify(t walletscope.Tracking, err error) {
	if p.onApply != nil {
		p.onApply(t, err)
	}
}

// Ensure Plugin implements walletscope.Plugin.
var _ walletscope.Plugin = (*Plugin)(nil)
