package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names
// to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"healthz": SecurityPublic,
	"metrics": SecurityPublic,

	// gRPC health and reflection - Public
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,

	// Quote requests - Access Protected
	"createQuoteRequest":    SecurityAccess,
	"listOpenQuoteRequests": SecurityAccess,
	"listMyQuoteRequests":   SecurityAccess,
	"getQuoteRequest":       SecurityAccess,

	// Quote responses - Access Protected
	"createQuoteResponse":  SecurityAccess,
	"listQuoteResponses":   SecurityAccess,
	"listMyQuoteResponses": SecurityAccess,
	"acceptQuoteResponse":  SecurityAccess,

	// Communities - Access Protected
	"createCommunity":    SecurityAccess,
	"listCommunities":    SecurityAccess,
	"getCommunity":       SecurityAccess,
	"joinCommunity":      SecurityAccess,
	"leaveCommunity":     SecurityAccess,
	"requestJoin":        SecurityAccess,
	"listJoinRequests":   SecurityAccess,
	"processJoinRequest": SecurityAccess,

	// Notifications and profile - Access Protected
	"listNotifications":    SecurityAccess,
	"markNotificationRead": SecurityAccess,
	"getMe":                SecurityAccess,
	"updateProfile":        SecurityAccess,
	"registerPushToken":    SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
