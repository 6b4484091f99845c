package identity

import "github.com/DrSkyle/cloudstamp/pkg/engine/event"

// Unknown is the actor of last resort when no claim identifies the caller.
const Unknown = "Unknown"

// ResolveActor derives a single displayable actor from the event's claims.
// It is total: some string always comes back, and the same precedence feeds
// both the Creator and LastModifiedBy tags.
//
//  1. The name claim, when present and non-empty.
//  2. The email claim, when present and non-empty.
//  3. For workload principals, "Service Principal ID <appid>". The appid claim
//     may itself be missing, which yields the bare prefix.
//  4. Unknown.
func ResolveActor(claims event.Claims, principal event.PrincipalType) string {
	if claims.Name != nil && *claims.Name != "" {
		return *claims.Name
	}
	if claims.Email != nil && *claims.Email != "" {
		return *claims.Email
	}
	if principal == event.PrincipalServicePrincipal || principal == event.PrincipalManagedIdentity {
		appID := ""
		if claims.AppID != nil {
			appID = *claims.AppID
		}
		return "Service Principal ID " + appID
	}
	return Unknown
}
