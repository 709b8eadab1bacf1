// Package domain holds the types, constants and sentinel errors shared by
// the token provider, the dictionary client and the smoke runner.
// It has no dependencies on transport or configuration packages.
package domain

import "time"

// Token issuance contract.
const (
	// TokenTTL is the fixed lifetime of a locally issued token (exp - iat).
	TokenTTL = 1800 * time.Second

	// DefaultRefreshSkew is how close to expiry a session token may get
	// before EnsureFresh re-issues it.
	DefaultRefreshSkew = 60 * time.Second

	// DefaultTokenSubject is the identity asserted by locally issued tokens.
	DefaultTokenSubject = "nicholat"

	// LoginPath is joined against the auth server address for remote login.
	LoginPath = "auth_service/api/v2/login"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// AuthorizationHeader is the only header the session manages.
	AuthorizationHeader = "Authorization"
)

// Scope names asserted by locally issued tokens.
const (
	ScopeConfigMgmt = "config_mgmt"
	ScopeAdmin      = "admin"
)

// AdminScopes returns the fixed scope set for config-management tokens.
// A fresh slice is returned so callers cannot mutate the shared set.
func AdminScopes() []string {
	return []string{ScopeConfigMgmt, ScopeAdmin}
}

// Dictionary service defaults.
const (
	DefaultServiceURL = "http://localhost:5000"
	APIPathSuffix     = "api/v4"

	// DefaultHTTPTimeout bounds every outbound request, including login.
	DefaultHTTPTimeout = 30 * time.Second

	// TotalCountHeader carries the pre-pagination result count on list calls.
	TotalCountHeader = "x-total-count"
)

// DictionaryType is the dictionary family a version belongs to.
type DictionaryType string

const (
	DictionaryTypeSSE    DictionaryType = "sse"
	DictionaryTypeFlight DictionaryType = "flight"
)

// IsValidDictionaryType checks if a dictionary type is accepted by the service.
func IsValidDictionaryType(t DictionaryType) bool {
	return t == DictionaryTypeSSE || t == DictionaryTypeFlight
}

// DictionaryState is the publication state of a dictionary version.
type DictionaryState string

const (
	StateNotPublished DictionaryState = "NOT_PUBLISHED"
	StatePublished    DictionaryState = "PUBLISHED"
	StateRetired      DictionaryState = "RETIRED"
	StateReleased     DictionaryState = "RELEASED"
)

// ContentKind names a dictionary content collection under
// /dictionaries/{type}/versions/{version}/{kind}.
type ContentKind string

const (
	ContentCommands ContentKind = "cmds"
	ContentEVRs     ContentKind = "evrs"
	ContentChannels ContentKind = "channels"
	ContentMIL1553  ContentKind = "mil1553"
)

// IsValidContentKind checks if a content kind is served by the dictionary service.
func IsValidContentKind(k ContentKind) bool {
	switch k {
	case ContentCommands, ContentEVRs, ContentChannels, ContentMIL1553:
		return true
	}
	return false
}
