// Package config defines the static filter configuration: which operations and
// resources the reconciler ignores, and which resource types it will stamp.
package config

// ResourceGroupType is the pseudo-type under which resource groups enter the
// resource-type allow-list. Groups have no ARM type of their own.
const ResourceGroupType = "Microsoft.Resources/subscriptions/resourceGroups"

// SkipRule is an operator-supplied CEL condition evaluated against each event.
// A rule returning true skips the event.
type SkipRule struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"`
}

// FilterConfig holds the overridable lists behind the event filter.
type FilterConfig struct {
	// ExcludedOperations rejects by exact operationName match.
	ExcludedOperations []string `yaml:"excluded_operations"`
	// ExcludedOperationPrefixes rejects by operationName prefix.
	ExcludedOperationPrefixes []string `yaml:"excluded_operation_prefixes"`
	// IgnorePatterns rejects resource IDs by substring containment.
	IgnorePatterns []string `yaml:"ignore_patterns"`
	// IncludedResourceTypes is the allow-list of taggable resource types.
	IncludedResourceTypes []string `yaml:"included_resource_types"`
	// SkipRules are optional CEL skip conditions.
	SkipRules []SkipRule `yaml:"skip_rules"`
}

// DefaultExcludedOperations lists noisy control-plane writes that never
// represent a user touching the resource itself. Tag writes are first: the
// reconciler's own merges come back through the subscription.
func DefaultExcludedOperations() []string {
	return []string{
		"Microsoft.Resources/tags/write",
		"Microsoft.EventGrid/eventSubscriptions/write",
		"Microsoft.PolicyInsights/policyStates/write",
		"Microsoft.PolicyInsights/attestations/write",
		"Microsoft.Maintenance/configurationAssignments/write",
		"Microsoft.Compute/virtualMachines/installPatches/action",
		"Microsoft.Compute/restorePointCollections/restorePoints/write",
	}
}

// DefaultExcludedOperationPrefixes covers the backup operation family, which
// fans out into too many operation names to enumerate.
func DefaultExcludedOperationPrefixes() []string {
	return []string{
		"Microsoft.RecoveryServices/backup",
	}
}

// DefaultIgnorePatterns drops resource IDs that are never worth stamping:
// deployment objects, tag sub-resources, and front-door internals.
func DefaultIgnorePatterns() []string {
	return []string{
		"/providers/Microsoft.Resources/deployments/",
		"/providers/Microsoft.Resources/tags/",
		"frontdoor",
	}
}

// DefaultIncludedResourceTypes is the allow-list of taggable types, resource
// groups included as a pseudo-type.
func DefaultIncludedResourceTypes() []string {
	return []string{
		ResourceGroupType,
		"Microsoft.Compute/virtualMachines",
		"Microsoft.Compute/virtualMachineScaleSets",
		"Microsoft.Compute/disks",
		"Microsoft.Compute/snapshots",
		"Microsoft.Compute/images",
		"Microsoft.Storage/storageAccounts",
		"Microsoft.Network/virtualNetworks",
		"Microsoft.Network/networkInterfaces",
		"Microsoft.Network/networkSecurityGroups",
		"Microsoft.Network/publicIPAddresses",
		"Microsoft.Network/loadBalancers",
		"Microsoft.Network/applicationGateways",
		"Microsoft.KeyVault/vaults",
		"Microsoft.Sql/servers",
		"Microsoft.Sql/servers/databases",
		"Microsoft.DBforPostgreSQL/flexibleServers",
		"Microsoft.DocumentDB/databaseAccounts",
		"Microsoft.Web/sites",
		"Microsoft.Web/serverFarms",
		"Microsoft.ContainerService/managedClusters",
		"Microsoft.ContainerRegistry/registries",
		"Microsoft.Cache/Redis",
		"Microsoft.EventHub/namespaces",
		"Microsoft.ServiceBus/namespaces",
		"Microsoft.Logic/workflows",
		"Microsoft.Insights/components",
		"Microsoft.OperationalInsights/workspaces",
		"Microsoft.DataFactory/factories",
		"Microsoft.Databricks/workspaces",
		"Microsoft.MachineLearningServices/workspaces",
		"Microsoft.CognitiveServices/accounts",
	}
}

// DefaultFilterConfig returns the compiled-in lists with no skip rules.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ExcludedOperations:        DefaultExcludedOperations(),
		ExcludedOperationPrefixes: DefaultExcludedOperationPrefixes(),
		IgnorePatterns:            DefaultIgnorePatterns(),
		IncludedResourceTypes:     DefaultIncludedResourceTypes(),
	}
}
