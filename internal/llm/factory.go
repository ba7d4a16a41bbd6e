// Package llm holds the chat-completion provider registry and shared errors.
package llm

import (
	"fmt"
	"sort"

	"mediguard/internal/config"
	"mediguard/internal/port"
)

// ProviderFactory creates a CompletionClient from the analyzer config.
type ProviderFactory func(cfg *config.AnalyzerConfig) (port.CompletionClient, error)

// registry of provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient creates the CompletionClient for cfg.Provider.
func NewClient(cfg *config.AnalyzerConfig) (port.CompletionClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
