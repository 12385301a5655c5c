package middleware

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// RoutePolicy maps a route prefix to the roles allowed to reach it. A single
// policy table replaces per-handler role checks: the router consults it once,
// before the handler runs.
type RoutePolicy struct {
	// PathPrefix is matched against the request path
	PathPrefix string
	// Roles allowed through; empty means any authenticated user
	Roles []string
	// Public routes bypass authentication entirely
	Public bool
}

// PolicyTable is an ordered set of route policies. Longest prefix wins.
type PolicyTable struct {
	policies []RoutePolicy
}

// NewPolicyTable builds a table, sorted by prefix length descending so the
// most specific policy matches first.
func NewPolicyTable(policies []RoutePolicy) *PolicyTable {
	sorted := make([]RoutePolicy, len(policies))
	copy(sorted, policies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].PathPrefix) > len(sorted[j].PathPrefix)
	})
	return &PolicyTable{policies: sorted}
}

// Match returns the policy governing a path, or nil when no policy applies.
func (t *PolicyTable) Match(path string) *RoutePolicy {
	for i := range t.policies {
		if strings.HasPrefix(path, t.policies[i].PathPrefix) {
			return &t.policies[i]
		}
	}
	return nil
}

// Guard enforces the policy table. It must run after Auth for non-public
// routes so the role claim is already in the context.
func Guard(table *PolicyTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy := table.Match(c.Request.URL.Path)
		if policy == nil || policy.Public {
			c.Next()
			return
		}

		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(""))
			return
		}

		if len(policy.Roles) == 0 {
			c.Next()
			return
		}

		for _, allowed := range policy.Roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error("FORBIDDEN", "Insufficient permissions"))
	}
}

// RequireRole checks the authenticated role against an allow list. Used for
// the few handlers whose requirement depends on more than the path.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextKeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("UNAUTHORIZED", "User not authenticated"))
			return
		}

		roleStr, ok := userRole.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.InternalError("Invalid role type"))
			return
		}

		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error("FORBIDDEN", "Insufficient permissions"))
	}
}
