package manager

import (
	"time"

	"neurod/internal/infer"
	"neurod/internal/tokenizer"
	"neurod/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultStepTimeout   = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
)

// EndpointOpener binds a registry entry to a live inference endpoint.
type EndpointOpener func(ep types.Endpoint) (infer.Endpoint, error)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry        []types.Endpoint
	BudgetMB        int
	MarginMB        int
	DefaultEndpoint string
	MaxQueueDepth   int
	MaxWait         time.Duration
	// StepTimeout bounds a single endpoint call during decoding.
	StepTimeout time.Duration
	// DrainTimeout bounds how long Unload waits for in-flight work.
	DrainTimeout time.Duration
	// Opener binds registry entries to live endpoints; nil uses the default
	// opener (synthetic entries only).
	Opener EndpointOpener
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:           StateLoading,
		registry:        cfg.Registry,
		budgetMB:        cfg.BudgetMB,
		marginMB:        cfg.MarginMB,
		defaultEndpoint: cfg.DefaultEndpoint,
		instances:       make(map[string]*Instance),
		opener:          cfg.Opener,
		publisher:       cfg.Publisher,
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.StepTimeout <= 0 {
		m.stepTimeout = defaultStepTimeout
	} else {
		m.stepTimeout = cfg.StepTimeout
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	if m.opener == nil {
		m.opener = defaultOpener
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	m.startTime = time.Now()
	return m
}

// defaultOpener only knows the built-in synthetic endpoint. Anything else
// needs a caller-supplied opener wired to a real runtime.
func defaultOpener(ep types.Endpoint) (infer.Endpoint, error) {
	if ep.Format == types.FormatSynthetic || ep.Path == "" {
		// the synthetic vocab must cover the byte tokenizer's id space
		return infer.NewSynthetic(tokenizer.VocabSize), nil
	}
	return nil, infer.ErrEndpointUnavailable("no runtime configured for format " + ep.Format)
}
