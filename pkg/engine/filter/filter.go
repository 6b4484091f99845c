// Package filter decides whether a change event deserves a tag write.
package filter

import (
	"strings"

	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine/event"
)

// Skip reasons, in check order.
const (
	ReasonSelfEvent       = "self-event"
	ReasonNoCallerIP      = "no caller ip claim"
	ReasonExcludedOp      = "excluded operation"
	ReasonIgnoredResource = "ignored resource id"
	ReasonPrincipalType   = "principal type not taggable"
	ReasonResourceType    = "resource type not in allow-list"
	ReasonSkipRule        = "matched skip rule"
)

// Verdict is the outcome of a filter pass. Reason is empty when Process is true.
type Verdict struct {
	Process bool
	Reason  string
}

var process = Verdict{Process: true}

func skip(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Filter evaluates the six qualifying-event checks. Pure and safe for
// concurrent use once built.
type Filter struct {
	excludedOps    map[string]struct{}
	excludedPfx    []string
	ignorePatterns []string
	includedTypes  map[string]struct{}
}

// New builds a Filter from the static lists. Resource type matching is
// case-insensitive, as the control plane itself is.
func New(cfg config.FilterConfig) *Filter {
	f := &Filter{
		excludedOps:   make(map[string]struct{}, len(cfg.ExcludedOperations)),
		excludedPfx:   cfg.ExcludedOperationPrefixes,
		includedTypes: make(map[string]struct{}, len(cfg.IncludedResourceTypes)),
	}
	for _, op := range cfg.ExcludedOperations {
		f.excludedOps[op] = struct{}{}
	}
	for _, p := range cfg.IgnorePatterns {
		f.ignorePatterns = append(f.ignorePatterns, strings.ToLower(p))
	}
	for _, t := range cfg.IncludedResourceTypes {
		f.includedTypes[strings.ToLower(t)] = struct{}{}
	}
	return f
}

// PreScreen runs the checks that need only the event itself (1–5), in order,
// short-circuiting on the first rejection. The resource-type check runs
// separately after the control-plane lookup.
func (f *Filter) PreScreen(ev event.ChangeEvent) Verdict {
	// The reconciler's own tag merge produces an audit event whose subject is
	// the resource it just stamped. Processing it would loop forever.
	if ev.Subject == ev.ResourceID {
		return skip(ReasonSelfEvent)
	}

	// No caller address means a system-internal actor or a gutted payload.
	// An empty string rejects the same way as an absent claim.
	if ev.Claims.IPAddress == nil || *ev.Claims.IPAddress == "" {
		return skip(ReasonNoCallerIP)
	}

	if _, ok := f.excludedOps[ev.Operation]; ok {
		return skip(ReasonExcludedOp)
	}
	for _, pfx := range f.excludedPfx {
		if strings.HasPrefix(ev.Operation, pfx) {
			return skip(ReasonExcludedOp)
		}
	}

	id := strings.ToLower(ev.ResourceID)
	for _, pattern := range f.ignorePatterns {
		if strings.Contains(id, pattern) {
			return skip(ReasonIgnoredResource)
		}
	}

	switch ev.Principal {
	case event.PrincipalUser, event.PrincipalServicePrincipal, event.PrincipalManagedIdentity:
	default:
		return skip(ReasonPrincipalType)
	}

	return process
}

// AllowsType is check 6: the resolved resource type must be on the allow-list.
func (f *Filter) AllowsType(resourceType string) Verdict {
	if _, ok := f.includedTypes[strings.ToLower(resourceType)]; !ok {
		return skip(ReasonResourceType)
	}
	return process
}

// ShouldProcess runs all six checks in order against an already-resolved
// resource type.
func (f *Filter) ShouldProcess(ev event.ChangeEvent, resourceType string) bool {
	if v := f.PreScreen(ev); !v.Process {
		return false
	}
	return f.AllowsType(resourceType).Process
}
