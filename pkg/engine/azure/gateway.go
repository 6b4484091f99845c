// Package azure wraps the ARM control plane behind the narrow gateway the
// reconciler needs: resolve a resource, read its tags, merge a tag patch.
package azure

import (
	"context"
	"errors"

	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine/tags"
)

// ErrNotFound marks lookups for resources the control plane cannot locate.
// The engine treats it as a skip, not a failure.
var ErrNotFound = errors.New("resource not found")

// ErrTransient marks throttling, 5xx and network failures on read or write.
// The invocation fails and the delivery layer redelivers; the reconcile is
// idempotent so replaying the whole event is safe.
var ErrTransient = errors.New("transient control plane failure")

// ResourceDescriptor identifies a resource and its taxonomy type. Resource
// groups come back with Type set to config.ResourceGroupType so the rest of
// the pipeline never needs to know they are looked up differently.
type ResourceDescriptor struct {
	ID   string
	Type string
}

// IsResourceGroup reports whether the descriptor names a resource group.
func (d ResourceDescriptor) IsResourceGroup() bool {
	return d.Type == config.ResourceGroupType
}

// TagGateway is the control-plane contract the engine depends on.
//
// MergeTags must upsert exactly the keys in the patch and leave every other
// key untouched; the engine never read-modify-writes foreign tags itself.
// There is no merge precondition in the underlying API, so two racing writers
// on a freshly created resource are last-write-wins. Accepted.
type TagGateway interface {
	// Describe resolves a resource ID to its descriptor, ErrNotFound when the
	// control plane cannot locate it.
	Describe(ctx context.Context, resourceID string) (ResourceDescriptor, error)
	// GetTags returns the current tag set; an untagged resource yields an
	// empty set, not an error.
	GetTags(ctx context.Context, resourceID string) (tags.Set, error)
	// MergeTags upserts the patch keys onto the resource.
	MergeTags(ctx context.Context, resourceID string, patch tags.Set) error
}
