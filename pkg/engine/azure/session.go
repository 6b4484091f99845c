package azure

import (
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/DrSkyle/cloudstamp/pkg/version"
)

// Session encapsulates ARM SDK usage: credential resolution, subscription
// selection, and client options shared by every client.
type Session struct {
	SubscriptionID string
	Credential     azcore.TokenCredential
	ClientOptions  *arm.ClientOptions
}

// NewSession resolves credentials through the default chain (environment,
// workload identity, managed identity, CLI). The subscription falls back to
// AZURE_SUBSCRIPTION_ID when not given explicitly.
func NewSession(subscriptionID string) (*Session, error) {
	if subscriptionID == "" {
		subscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
	}
	if subscriptionID == "" {
		return nil, fmt.Errorf("no subscription id: pass one or set AZURE_SUBSCRIPTION_ID")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve credential: %w", err)
	}

	opts := &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Telemetry: policy.TelemetryOptions{
				ApplicationID: "cloudstamp/" + version.Current,
			},
		},
	}

	// Local endpoint override (used for mocking/testing).
	if endpoint := os.Getenv("ARM_ENDPOINT_URL"); endpoint != "" {
		opts.ClientOptions.Cloud = cloud.Configuration{
			Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
				cloud.ResourceManager: {
					Endpoint: endpoint,
					Audience: endpoint,
				},
			},
		}
	}

	return &Session{
		SubscriptionID: subscriptionID,
		Credential:     cred,
		ClientOptions:  opts,
	}, nil
}
