package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/ssr/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryContract,
		Message:  "Only a Response or a template result can be returned",
		Detail:   "A page or component returned a value the renderer cannot drive. Components must return a *render.Response, a *render.HeadAndContent wrapping a template result, or a template result.",
		DocURL:   docBase + "E200",
	},
	"E201": {
		Category: CategoryStream,
		Message:  "Response sent after streaming started",
		Detail:   "A nested component returned a Response after the first bytes were sent. Status and headers can no longer change once streaming has begun.",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryRender,
		Message:  "Head propagation failed",
		Detail:   "A component registered for head propagation failed to initialize. No head content was emitted for this render.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryRender,
		Message:  "Render cancelled",
		Detail:   "The client disconnected or the request context ended before rendering finished.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryRender,
		Message:  "Component failed to render",
		Detail:   "A component returned an error while its output was being produced.",
		DocURL:   docBase + "E204",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid ssr config",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No ssr.json, ssr.yaml or ssr.yml was found.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The port must be between 0 and 65535.",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Unknown render mode",
		Detail:   "The render mode must be one of string, stream or pull.",
		DocURL:   docBase + "E123",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Unknown log level",
		Detail:   "The log level must be one of debug, info, warn or error.",
		DocURL:   docBase + "E124",
	},

	// ============================================
	// Storage Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryStorage,
		Message:  "Failed to store prerendered page",
		Detail:   "The prerendered HTML could not be written to the configured store.",
		DocURL:   docBase + "E160",
	},
	"E161": {
		Category: CategoryStorage,
		Message:  "S3 bucket not configured",
		Detail:   "Prerendering to S3 requires prerender.s3.bucket to be set.",
		DocURL:   docBase + "E161",
	},
	"E162": {
		Category: CategoryStorage,
		Message:  "Invalid asset manifest",
		Detail:   "manifest.json in the static directory must be a JSON object of source names to fingerprinted names.",
		DocURL:   docBase + "E162",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Unknown route",
		Detail:   "The requested route is not registered.",
		DocURL:   docBase + "E180",
	},
}

// Register adds or replaces an error template.
// Intended for packages that extend the error catalogue at init time.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
