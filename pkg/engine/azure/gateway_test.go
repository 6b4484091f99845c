package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine/tags"
)

func TestResourceGroupName(t *testing.T) {
	cases := []struct {
		id   string
		name string
		ok   bool
	}{
		{"/subscriptions/sub-1/resourceGroups/rg-1", "rg-1", true},
		{"/subscriptions/sub-1/resourcegroups/rg-1", "rg-1", true},
		{"/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Compute/virtualMachines/vm-1", "", false},
		{"/subscriptions/sub-1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		name, ok := resourceGroupName(tc.id)
		if name != tc.name || ok != tc.ok {
			t.Errorf("resourceGroupName(%q) = (%q, %v), want (%q, %v)", tc.id, name, ok, tc.name, tc.ok)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		notFound  bool
		transient bool
	}{
		{"404", &azcore.ResponseError{StatusCode: 404, ErrorCode: "ResourceNotFound"}, true, false},
		{"429", &azcore.ResponseError{StatusCode: 429, ErrorCode: "TooManyRequests"}, false, true},
		{"503", &azcore.ResponseError{StatusCode: 503, ErrorCode: "ServerBusy"}, false, true},
		{"403 stays itself", &azcore.ResponseError{StatusCode: 403, ErrorCode: "AuthorizationFailed"}, false, false},
		{"network", errors.New("connection reset"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("op", tc.err)
			if errors.Is(got, ErrNotFound) != tc.notFound {
				t.Errorf("ErrNotFound mismatch: %v", got)
			}
			if errors.Is(got, ErrTransient) != tc.transient {
				t.Errorf("ErrTransient mismatch: %v", got)
			}
		})
	}
}

func TestMockGatewayMergePreservesForeignKeys(t *testing.T) {
	gw := &MockGateway{}
	gw.AddResource("res-1", "Microsoft.Compute/virtualMachines", tags.Set{"Env": "prod"})

	err := gw.MergeTags(context.Background(), "res-1", tags.Set{tags.KeyCreator: "alice"})
	if err != nil {
		t.Fatalf("MergeTags: %v", err)
	}

	current, err := gw.GetTags(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("GetTags: %v", err)
	}
	if current["Env"] != "prod" {
		t.Errorf("foreign key lost: %v", current)
	}
	if current[tags.KeyCreator] != "alice" {
		t.Errorf("patched key missing: %v", current)
	}
}

func TestMockGatewayUnknownResource(t *testing.T) {
	gw := &MockGateway{}

	if _, err := gw.Describe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	// Untagged resources yield an empty set, not an error.
	set, err := gw.GetTags(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetTags: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}

func TestDescriptorIsResourceGroup(t *testing.T) {
	d := ResourceDescriptor{ID: "/subscriptions/s/resourceGroups/rg", Type: config.ResourceGroupType}
	if !d.IsResourceGroup() {
		t.Error("expected resource group descriptor")
	}
	if (ResourceDescriptor{Type: "Microsoft.Compute/virtualMachines"}).IsResourceGroup() {
		t.Error("typed resource misclassified as group")
	}
}
