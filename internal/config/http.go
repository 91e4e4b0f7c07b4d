package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeJSON = "application/json"
	CTypeSSE  = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
	HTTPErrSessionNotOpen   = "Editor session not open"
	HTTPErrCampaignNotFound = "Campaign not found"
)

const (
	// Cookie forwarded to the legacy backend on gallery and settings calls.
	CookieLegacySession = "legacy-session"
)
