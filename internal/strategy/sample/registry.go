// Package sample holds the built-in strategies wired into the command
// binaries.
package sample

import (
	"fmt"
	"sort"

	"main/internal/strategy"
)

var factories = map[string]func() strategy.Strategy{
	"ma-crossover":       func() strategy.Strategy { return &MACrossover{} },
	"rsi-mean-reversion": func() strategy.Strategy { return &RSIMeanReversion{} },
}

// New instantiates a registered strategy by name. Every route gets its
// own instance.
func New(name string) (strategy.Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
