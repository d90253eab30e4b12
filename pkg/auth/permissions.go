package auth

import "strings"

// Action constants for permissions
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionAdmin  = "admin"
	ActionAll    = "*"
)

// Permissions checked by the gateway routes
const (
	PermReadLogs   = "read:logs"
	PermCreateLogs = "create:logs"
	PermReadQueues = "read:queues"
)

// HasPermission checks if user has required permission with wildcard support
func HasPermission(userPermissions []string, required string) bool {
	for _, perm := range userPermissions {
		if matchesPermission(perm, required) {
			return true
		}
	}
	return false
}

// matchesPermission handles "action:resource" with these wildcards:
// "*:*" grants everything, "admin:logs" every action on logs, "read:*"
// reading any resource and "*:logs" any action on logs.
func matchesPermission(userPerm, required string) bool {
	if userPerm == required || userPerm == "*:*" {
		return true
	}

	userAction, userResource, ok := strings.Cut(userPerm, ":")
	if !ok {
		return false
	}
	reqAction, reqResource, ok := strings.Cut(required, ":")
	if !ok {
		return false
	}

	switch {
	case userResource == reqResource && (userAction == ActionAdmin || userAction == ActionAll):
		return true
	case userAction == reqAction && userResource == ActionAll:
		return true
	}
	return false
}
