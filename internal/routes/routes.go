// Package routes defines HTTP route constants for the application.
package routes

// URL parameters
const (
	ParamCampaignID = "id"
	ParamRequestID  = "requestID"
	ParamStyle      = "style"
)

// API Routes
const (
	HealthPath = "/healthz"

	// Campaigns
	APICampaigns      = "/api/campaigns"
	APICampaign       = "/api/campaigns/{id}"
	APICampaignSource = "/api/campaigns/{id}/source"
	APICampaignName   = "/api/campaigns/{id}/name"

	// Editor session
	APICampaignEvents = "/api/campaigns/{id}/events"
	APICampaignSave   = "/api/campaigns/{id}/save"
	APICampaignExport = "/api/campaigns/{id}/export"
	APICampaignReply  = "/api/campaigns/{id}/exports/{requestID}"

	// Gallery and settings
	APIImages   = "/api/images"
	APISettings = "/api/settings"

	// Source view styles
	StylesPath = "/styles"
	StyleCSS   = "/styles/{style}.css"
)

// Query parameters
const (
	QueryForce        = "force"
	QueryStyle        = "style"
	QuerySearchTerm   = "searchTerm"
	QueryContinuation = "continuation"
)

// FormFieldImage is the multipart field carrying an uploaded image.
const FormFieldImage = "file"
