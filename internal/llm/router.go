package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Stage is a step of a chat turn that calls a model
type Stage string

const (
	StageClassify Stage = "classify"
	StageRespond  Stage = "respond"
)

// Route pins a stage to a provider. An empty Model uses the provider's default.
type Route struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// Router picks the provider and model for each stage of a turn.
// A stage whose provider is missing or unconfigured falls back to the default
// provider, then to the first configured provider by name.
type Router struct {
	mu              sync.RWMutex
	providers       map[string]Provider
	factories       map[string]ProviderFactory
	routes          map[Stage]Route
	defaultProvider string
}

func NewRouter(defaultProvider string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		factories:       make(map[string]ProviderFactory),
		routes:          make(map[Stage]Route),
		defaultProvider: defaultProvider,
	}
}

func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// RegisterFactory registers a constructor for providers built from settings
func (r *Router) RegisterFactory(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// SetRoute assigns a stage to a provider and model
func (r *Router) SetRoute(stage Stage, route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route.Provider == "" && route.Model == "" {
		delete(r.routes, stage)
		return
	}
	r.routes[stage] = route
}

// Routes returns the resolved provider and model of every stage that can run
func (r *Router) Routes() map[Stage]Route {
	out := make(map[Stage]Route, 2)
	for _, stage := range []Stage{StageClassify, StageRespond} {
		if p, model, err := r.Resolve(stage); err == nil {
			out[stage] = Route{Provider: p.Name(), Model: model}
		}
	}
	return out
}

// Resolve returns the provider and model a stage runs on
func (r *Router) Resolve(stage Stage) (Provider, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route := r.routes[stage]
	if p := r.configured(route.Provider); p != nil {
		return p, modelFor(p, route.Model), nil
	}
	// A model pinned for another provider does not carry over
	if p := r.configured(r.defaultProvider); p != nil {
		model := ""
		if route.Provider == "" || route.Provider == r.defaultProvider {
			model = route.Model
		}
		return p, modelFor(p, model), nil
	}

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := r.configured(name); p != nil {
			return p, p.DefaultModel(), nil
		}
	}
	return nil, "", fmt.Errorf("no configured provider for %s (default %q)", stage, r.defaultProvider)
}

// configured must be called with r.mu held
func (r *Router) configured(name string) Provider {
	if name == "" {
		return nil
	}
	p, ok := r.providers[name]
	if !ok || !p.IsConfigured() {
		return nil
	}
	return p
}

func modelFor(p Provider, model string) string {
	if model != "" {
		return model
	}
	return p.DefaultModel()
}

// Classify runs the classification stage
func (r *Router) Classify(ctx context.Context, req ClassifyRequest) (*Decision, error) {
	p, model, err := r.Resolve(StageClassify)
	if err != nil {
		return nil, err
	}
	decision, err := p.Classify(ctx, req, model)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", p.Name(), model, err)
	}
	return decision, nil
}

// Respond runs the reply stage
func (r *Router) Respond(ctx context.Context, req RespondRequest) (*Response, error) {
	p, model, err := r.Resolve(StageRespond)
	if err != nil {
		return nil, err
	}
	resp, err := p.Respond(ctx, req, model)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", p.Name(), model, err)
	}
	return resp, nil
}

// GetProviderWithConfig builds a provider through its factory when settings
// are given, else returns the registered instance.
func (r *Router) GetProviderWithConfig(name string, config map[string]any) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	factory, hasFactory := r.factories[name]
	provider, hasProvider := r.providers[name]
	r.mu.RUnlock()

	if len(config) > 0 && hasFactory {
		return factory(config)
	}
	if !hasProvider {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	if !provider.IsConfigured() {
		return nil, fmt.Errorf("provider not configured: %s", name)
	}
	return provider, nil
}

// ListProviders returns configured provider names in order
func (r *Router) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, p := range r.providers {
		if p.IsConfigured() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderInfo describes a registered provider and the stages routed to it
type ProviderInfo struct {
	Name       string   `json:"name"`
	Models     []string `json:"models"`
	Default    bool     `json:"default"`
	Configured bool     `json:"configured"`
	Stages     []Stage  `json:"stages,omitempty"`
}

func (r *Router) GetProvidersInfo() []ProviderInfo {
	routes := r.Routes()

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		info := ProviderInfo{
			Name:       name,
			Models:     p.AvailableModels(),
			Default:    name == r.defaultProvider,
			Configured: p.IsConfigured(),
		}
		for _, stage := range []Stage{StageClassify, StageRespond} {
			if routes[stage].Provider == name {
				info.Stages = append(info.Stages, stage)
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
