package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine/tags"
)

// Generic api-version for GetByID lookups. Only the resource's type and tags
// are read, so the stable resources version is enough.
const resourceAPIVersion = "2021-04-01"

// ARMGateway implements TagGateway against the Azure Resource Manager.
type ARMGateway struct {
	resources *armresources.Client
	groups    *armresources.ResourceGroupsClient
	tags      *armresources.TagsClient
}

// NewARMGateway builds the three ARM clients from a session.
func NewARMGateway(sess *Session) (*ARMGateway, error) {
	resources, err := armresources.NewClient(sess.SubscriptionID, sess.Credential, sess.ClientOptions)
	if err != nil {
		return nil, fmt.Errorf("resources client: %w", err)
	}
	groups, err := armresources.NewResourceGroupsClient(sess.SubscriptionID, sess.Credential, sess.ClientOptions)
	if err != nil {
		return nil, fmt.Errorf("resource groups client: %w", err)
	}
	tagsClient, err := armresources.NewTagsClient(sess.SubscriptionID, sess.Credential, sess.ClientOptions)
	if err != nil {
		return nil, fmt.Errorf("tags client: %w", err)
	}
	return &ARMGateway{resources: resources, groups: groups, tags: tagsClient}, nil
}

// Describe resolves the resource ID. Resource groups use their own lookup and
// are normalized into the shared descriptor shape.
func (g *ARMGateway) Describe(ctx context.Context, resourceID string) (ResourceDescriptor, error) {
	if name, ok := resourceGroupName(resourceID); ok {
		resp, err := g.groups.Get(ctx, name, nil)
		if err != nil {
			return ResourceDescriptor{}, classify("describe resource group", err)
		}
		return ResourceDescriptor{
			ID:   deref(resp.ID),
			Type: config.ResourceGroupType,
		}, nil
	}

	resp, err := g.resources.GetByID(ctx, resourceID, resourceAPIVersion, nil)
	if err != nil {
		return ResourceDescriptor{}, classify("describe resource", err)
	}
	return ResourceDescriptor{
		ID:   deref(resp.ID),
		Type: deref(resp.Type),
	}, nil
}

// GetTags reads the current tag set through the tags scope API, which serves
// resources and resource groups alike.
func (g *ARMGateway) GetTags(ctx context.Context, resourceID string) (tags.Set, error) {
	resp, err := g.tags.GetAtScope(ctx, resourceID, nil)
	if err != nil {
		return nil, classify("get tags", err)
	}

	out := tags.Set{}
	if resp.Properties != nil {
		for k, v := range resp.Properties.Tags {
			out[k] = deref(v)
		}
	}
	return out, nil
}

// MergeTags upserts the patch server-side with the merge operation. Keys not
// in the patch are untouched, which is the preservation contract the
// reconciler relies on for foreign tags.
func (g *ARMGateway) MergeTags(ctx context.Context, resourceID string, patch tags.Set) error {
	props := make(map[string]*string, len(patch))
	for k, v := range patch {
		props[k] = to.Ptr(v)
	}

	params := armresources.TagsPatchResource{
		Operation: to.Ptr(armresources.TagsPatchOperationMerge),
		Properties: &armresources.Tags{
			Tags: props,
		},
	}
	if _, err := g.tags.UpdateAtScope(ctx, resourceID, params, nil); err != nil {
		return classify("merge tags", err)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// resourceGroupName extracts the group name when the ID addresses a resource
// group itself: /subscriptions/<sub>/resourceGroups/<name> and nothing deeper.
func resourceGroupName(resourceID string) (string, bool) {
	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	if len(parts) == 4 && strings.EqualFold(parts[0], "subscriptions") && strings.EqualFold(parts[2], "resourceGroups") {
		return parts[3], true
	}
	return "", false
}

// classify maps SDK errors onto the gateway taxonomy: 404 is ErrNotFound,
// throttling/5xx/network are ErrTransient, anything else (403 and friends)
// surfaces as-is.
func classify(op string, err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= 500:
			return fmt.Errorf("%s: %w: %s (%d)", op, ErrTransient, respErr.ErrorCode, respErr.StatusCode)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	// No HTTP response at all: treat as transport failure.
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}
