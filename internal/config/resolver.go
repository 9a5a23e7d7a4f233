// Package config resolves which services the orchestrator should bring up
// for one invocation and loads the persisted configuration file.
//
// The resolved Activation is an immutable value built exactly once per run.
// No component reads ambient environment state directly; the resolver is
// handed a lookup func so precedence stays testable.
package config

import (
	"strings"

	"stackctl/internal/registry"
)

// EnvServices is the environment override for the activation set. Its value
// is a whitespace-separated name list, or the sentinel "all".
const EnvServices = "STACKCTL_SERVICES"

const sentinelAll = "all"

// Source records which layer produced the activation set.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceEnv      Source = "env"
	SourceFile     Source = "file"
	SourceDefault  Source = "default"
)

// EnvLookup mirrors os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// Activation is the resolved, ordered set of service names for one
// invocation. Unknown names are retained so the supervisor can surface a
// per-name diagnostic instead of the resolver silently dropping them.
type Activation struct {
	names  []registry.Name
	source Source
}

// Resolve evaluates the activation sources in strict precedence order,
// first non-empty match wins:
//
//  1. explicit caller-supplied names (CLI args)
//  2. the EnvServices override ("all" expands to every registered name)
//  3. the persisted enabled_services list (membership only; reordered to
//     registry startup-weight order)
//  4. every registered name
func Resolve(explicit []string, env EnvLookup, file *File) Activation {
	if len(explicit) > 0 {
		return Activation{names: toNames(explicit), source: SourceExplicit}
	}
	if env != nil {
		if v, ok := env(EnvServices); ok && strings.TrimSpace(v) != "" {
			if strings.TrimSpace(v) == sentinelAll {
				return Activation{names: registry.AllNames(), source: SourceEnv}
			}
			return Activation{names: toNames(strings.Fields(v)), source: SourceEnv}
		}
	}
	if file != nil && len(file.EnabledServices) > 0 {
		names := toNames(file.EnabledServices)
		// Config declares membership; the registry owns ordering.
		registry.SortByWeight(names)
		return Activation{names: names, source: SourceFile}
	}
	return Activation{names: registry.AllNames(), source: SourceDefault}
}

// Names returns the resolved names in activation order. The slice is a copy.
func (a Activation) Names() []registry.Name {
	out := make([]registry.Name, len(a.names))
	copy(out, a.names)
	return out
}

// Source reports which layer won the precedence evaluation.
func (a Activation) Source() Source { return a.source }

// Contains reports whether name is a member of the activation set.
func (a Activation) Contains(name registry.Name) bool {
	for _, n := range a.names {
		if n == name {
			return true
		}
	}
	return false
}

func toNames(ss []string) []registry.Name {
	names := make([]registry.Name, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		names = append(names, registry.Name(s))
	}
	return names
}
