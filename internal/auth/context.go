package auth

import (
	"context"
	"strings"
)

// Role is a coarse permission level carried by a token
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RoleService Role = "service"
)

// Auth types recorded on the user context
const (
	AuthTypeAPIKey = "api_key"
	AuthTypeJWT    = "jwt"
)

// SystemUserID is the subject used for API key requests and background jobs
const SystemUserID = "system"

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []Role
	AuthType    string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// SystemUser is the principal for API key requests and scheduled jobs
func SystemUser() *UserContext {
	return &UserContext{
		UserID:      SystemUserID,
		DisplayName: "System",
		Email:       "system@vdg.local",
		Roles:       []Role{RoleAdmin, RoleService},
		AuthType:    AuthTypeAPIKey,
	}
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user may change firm-wide settings such as partner shares
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Name returns the display name, falling back to the email
func (u *UserContext) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Email
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
