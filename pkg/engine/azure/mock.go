package azure

import (
	"context"
	"fmt"
	"sync"

	"github.com/DrSkyle/cloudstamp/pkg/engine/tags"
)

// MergeCall records one MergeTags invocation.
type MergeCall struct {
	ResourceID string
	Patch      tags.Set
}

// MockGateway is an in-memory TagGateway for tests and mock mode. Zero value
// is usable; unknown resources come back ErrNotFound.
type MockGateway struct {
	mu sync.Mutex

	// Types maps resource ID -> resource type.
	Types map[string]string
	// Tags maps resource ID -> current tag set.
	Tags map[string]tags.Set

	// Error injection.
	DescribeErr error
	GetTagsErr  error
	MergeErr    error

	// Merges records every committed patch in order.
	Merges []MergeCall
}

// AddResource registers a resource with its type and starting tags.
func (m *MockGateway) AddResource(id, resourceType string, current tags.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Types == nil {
		m.Types = map[string]string{}
	}
	if m.Tags == nil {
		m.Tags = map[string]tags.Set{}
	}
	m.Types[id] = resourceType
	m.Tags[id] = current.Clone()
}

func (m *MockGateway) Describe(ctx context.Context, resourceID string) (ResourceDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DescribeErr != nil {
		return ResourceDescriptor{}, m.DescribeErr
	}
	t, ok := m.Types[resourceID]
	if !ok {
		return ResourceDescriptor{}, fmt.Errorf("describe resource: %w", ErrNotFound)
	}
	return ResourceDescriptor{ID: resourceID, Type: t}, nil
}

func (m *MockGateway) GetTags(ctx context.Context, resourceID string) (tags.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTagsErr != nil {
		return nil, m.GetTagsErr
	}
	return m.Tags[resourceID].Clone(), nil
}

func (m *MockGateway) MergeTags(ctx context.Context, resourceID string, patch tags.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MergeErr != nil {
		return m.MergeErr
	}
	if m.Tags == nil {
		m.Tags = map[string]tags.Set{}
	}
	current := m.Tags[resourceID].Clone()
	for k, v := range patch {
		current[k] = v
	}
	m.Tags[resourceID] = current
	m.Merges = append(m.Merges, MergeCall{ResourceID: resourceID, Patch: patch.Clone()})
	return nil
}
