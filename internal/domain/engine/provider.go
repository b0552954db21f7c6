package engine

import "github.com/felixgeelhaar/rig/internal/domain/config"

// Provider compiles one concern of the settings into executable steps.
// Cross-provider ordering is expressed through Step.DependsOn, never
// through provider registration order.
type Provider interface {
	// Name returns the provider's identifier (e.g., "pkg", "shell", "nvim").
	Name() string

	// Compile transforms settings into a list of steps.
	Compile(ctx CompileContext) ([]Step, error)
}

// CompileContext provides the resolved settings to providers.
type CompileContext struct {
	settings *config.Settings
}

// NewCompileContext creates a CompileContext for the given settings.
func NewCompileContext(settings *config.Settings) CompileContext {
	return CompileContext{settings: settings}
}

// Settings returns the resolved run settings.
func (c CompileContext) Settings() *config.Settings {
	return c.settings
}

// Compiler aggregates providers into a validated StepGraph.
type Compiler struct {
	providers []Provider
}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{providers: make([]Provider, 0)}
}

// RegisterProvider adds a provider to the compiler.
func (c *Compiler) RegisterProvider(provider Provider) {
	c.providers = append(c.providers, provider)
}

// Providers returns all registered providers.
func (c *Compiler) Providers() []Provider {
	return c.providers
}

// Compile builds the StepGraph from all providers and validates it.
// A duplicate id, missing dependency, or cycle is a configuration error:
// nothing may execute against an invalid plan.
func (c *Compiler) Compile(ctx CompileContext) (*StepGraph, error) {
	graph := NewStepGraph()

	for _, provider := range c.providers {
		steps, err := provider.Compile(ctx)
		if err != nil {
			return nil, NewConfigError("provider "+provider.Name()+" failed to compile", err)
		}
		for _, step := range steps {
			if err := graph.Add(step); err != nil {
				return nil, NewConfigError("provider "+provider.Name(), err)
			}
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, NewConfigError("invalid plan", err)
	}
	if _, err := graph.TopologicalSort(); err != nil {
		return nil, NewConfigError("invalid plan", err)
	}

	return graph, nil
}
