package hooks

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridex/settle/id"
)

var (
	// ErrInvalidPermissions is returned when an extension's declared
	// permissions do not match the interfaces its type implements.
	ErrInvalidPermissions = errors.New("hooks: declared permissions do not match implementation")

	// ErrDuplicateName is returned when an extension name is already taken.
	ErrDuplicateName = errors.New("hooks: extension name already registered")

	// ErrNotFound is returned when no extension is registered under an ID.
	ErrNotFound = errors.New("hooks: extension not found")
)

// Hookset is the capability cache built for one extension at registration.
// Typed references are resolved once so dispatch is a nil check, not a type
// assertion.
type Hookset struct {
	ID          id.ExtensionID
	Extension   Extension
	Permissions PermissionSet

	BeforeInitialize      BeforeInitializeHook
	AfterInitialize       AfterInitializeHook
	BeforeAddLiquidity    BeforeAddLiquidityHook
	AfterAddLiquidity     AfterAddLiquidityHook
	BeforeRemoveLiquidity BeforeRemoveLiquidityHook
	AfterRemoveLiquidity  AfterRemoveLiquidityHook
	BeforeSwap            BeforeSwapHook
	AfterSwap             AfterSwapHook
	BeforeDonate          BeforeDonateHook
	AfterDonate           AfterDonateHook

	BeforeSwapDelta           BeforeSwapDeltaHook
	AfterSwapDelta            AfterSwapDeltaHook
	AfterAddLiquidityDelta    AfterAddLiquidityDeltaHook
	AfterRemoveLiquidityDelta AfterRemoveLiquidityDeltaHook
}

// Registry holds registered extensions keyed by ID, with name uniqueness.
type Registry struct {
	mu     sync.RWMutex
	logger *slog.Logger
	byID   map[id.ExtensionID]*Hookset
	byName map[string]id.ExtensionID
}

// NewRegistry creates an empty extension registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		byID:   make(map[id.ExtensionID]*Hookset),
		byName: make(map[string]id.ExtensionID),
	}
}

// Register validates ext against its declared permissions and caches its
// capabilities. The derived set must equal the declared set exactly: an
// undeclared capability is as much an error as a declared-but-missing one.
func (r *Registry) Register(ext Extension, declared PermissionSet) (id.ExtensionID, error) {
	derived := DeriveCapabilities(ext)
	if derived != declared {
		return id.Nil, fmt.Errorf("%w: %s declares [%s] but implements [%s]",
			ErrInvalidPermissions, ext.Name(), declared, derived)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[ext.Name()]; taken {
		return id.Nil, fmt.Errorf("%w: %s", ErrDuplicateName, ext.Name())
	}

	hs := &Hookset{
		ID:          id.NewExtensionID(),
		Extension:   ext,
		Permissions: derived,
	}
	hs.BeforeInitialize, _ = ext.(BeforeInitializeHook)
	hs.AfterInitialize, _ = ext.(AfterInitializeHook)
	hs.BeforeAddLiquidity, _ = ext.(BeforeAddLiquidityHook)
	hs.AfterAddLiquidity, _ = ext.(AfterAddLiquidityHook)
	hs.BeforeRemoveLiquidity, _ = ext.(BeforeRemoveLiquidityHook)
	hs.AfterRemoveLiquidity, _ = ext.(AfterRemoveLiquidityHook)
	hs.BeforeSwap, _ = ext.(BeforeSwapHook)
	hs.AfterSwap, _ = ext.(AfterSwapHook)
	hs.BeforeDonate, _ = ext.(BeforeDonateHook)
	hs.AfterDonate, _ = ext.(AfterDonateHook)
	hs.BeforeSwapDelta, _ = ext.(BeforeSwapDeltaHook)
	hs.AfterSwapDelta, _ = ext.(AfterSwapDeltaHook)
	hs.AfterAddLiquidityDelta, _ = ext.(AfterAddLiquidityDeltaHook)
	hs.AfterRemoveLiquidityDelta, _ = ext.(AfterRemoveLiquidityDeltaHook)

	r.byID[hs.ID] = hs
	r.byName[ext.Name()] = hs.ID

	r.logger.Info("extension registered",
		slog.String("extension_id", hs.ID.String()),
		slog.String("name", ext.Name()),
		slog.String("permissions", derived.String()),
	)

	return hs.ID, nil
}

// Get returns the cached hookset for extID.
func (r *Registry) Get(extID id.ExtensionID) (*Hookset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hs, ok := r.byID[extID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, extID)
	}
	return hs, nil
}

// Has reports whether extID is registered.
func (r *Registry) Has(extID id.ExtensionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[extID]
	return ok
}

// Lookup returns the extension ID registered under name.
func (r *Registry) Lookup(name string) (id.ExtensionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	extID, ok := r.byName[name]
	return extID, ok
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
