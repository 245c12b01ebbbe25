// Package extension provides the Forge extension adapter for the settlement
// engine.
//
// It implements the forge.Extension interface to integrate the engine into a
// Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions or via
// YAML configuration files under "extensions.settle" or "settle" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	settle "github.com/meridex/settle"
	"github.com/meridex/settle/store"
	"github.com/meridex/settle/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "settle"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Flash-accounting settlement engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the settlement engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *settle.Engine
	store      store.Store
	engineOpts []settle.Option
}

// New creates a new Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine instance.
// This is nil until Register is called.
func (e *Extension) Engine() *settle.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts := make([]settle.Option, 0, len(e.engineOpts)+1)
	opts = append(opts, settle.WithStore(e.store))
	opts = append(opts, e.engineOpts...)

	e.engine = settle.New(opts...)

	return vessel.Provide(fapp.Container(), func() (*settle.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("settle: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(ctx context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(ctx); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("settle: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("settle: configuration is required but not found in config files; " +
				"ensure 'extensions.settle' or 'settle' key exists in your config")
		}
		e.config = programmaticConfig
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("settle: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
	)
	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.settle" first (namespaced pattern).
	if cm.IsSet("extensions.settle") {
		if err := cm.Bind("extensions.settle", &cfg); err == nil {
			e.Logger().Debug("settle: loaded config from file",
				forge.F("key", "extensions.settle"),
			)
			return cfg, true
		}
		e.Logger().Warn("settle: failed to bind extensions.settle config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "settle" key.
	if cm.IsSet("settle") {
		if err := cm.Bind("settle", &cfg); err == nil {
			e.Logger().Debug("settle: loaded config from file",
				forge.F("key", "settle"),
			)
			return cfg, true
		}
		e.Logger().Warn("settle: failed to bind settle config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// Programmatic bool flags override when true.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	return yamlConfig
}
