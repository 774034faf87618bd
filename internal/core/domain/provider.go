package domain

// CloudProvider is a selectable cloud backend context. It scopes which
// prompts are shown and which chat endpoint a session is routed to.
type CloudProvider string

const (
	ProviderAWS    CloudProvider = "aws"
	ProviderAzure  CloudProvider = "azure"
	ProviderGCP    CloudProvider = "gcp"
	ProviderOnPrem CloudProvider = "onprem"
)

// DefaultProvider is used when neither an access map nor a saved
// preference produces a choice.
const DefaultProvider = ProviderAWS

// providerOrder fixes the iteration order for "first accessible provider"
// resolution; map iteration order would make it nondeterministic.
var providerOrder = []CloudProvider{ProviderAWS, ProviderAzure, ProviderGCP, ProviderOnPrem}

var providerNames = map[CloudProvider]string{
	ProviderAWS:    "Amazon Web Services",
	ProviderAzure:  "Microsoft Azure",
	ProviderGCP:    "Google Cloud Platform",
	ProviderOnPrem: "On-Premises Infrastructure",
}

// ParseProvider converts a raw string into a CloudProvider.
func ParseProvider(s string) (CloudProvider, bool) {
	p := CloudProvider(s)
	if _, ok := providerNames[p]; ok {
		return p, true
	}
	return "", false
}

// Valid reports whether p names a known provider.
func (p CloudProvider) Valid() bool {
	_, ok := providerNames[p]
	return ok
}

// DisplayName returns the human-readable provider name, or the raw value
// for unknown providers.
func (p CloudProvider) DisplayName() string {
	if name, ok := providerNames[p]; ok {
		return name
	}
	return string(p)
}

// ProviderAccess maps each provider to whether the user may use it.
// A nil map means "no restrictions recorded".
type ProviderAccess map[CloudProvider]bool

// Allows reports whether access to p is granted. A nil map allows everything.
func (a ProviderAccess) Allows(p CloudProvider) bool {
	if a == nil {
		return true
	}
	return a[p]
}

// First returns the first provider the user has access to, in the fixed
// aws, azure, gcp, onprem order.
func (a ProviderAccess) First() (CloudProvider, bool) {
	for _, p := range providerOrder {
		if a[p] {
			return p, true
		}
	}
	return "", false
}
