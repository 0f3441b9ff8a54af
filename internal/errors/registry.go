package errors

// Registered error codes.
const (
	CodeUpdating      = "E001"
	CodeUninitialized = "E002"
	CodeReadOnly      = "E003"
	CodeUnknownCell   = "E004"
	CodeInvalidFrame  = "E005"
	CodeLoopStopped   = "E006"
	CodeStoreFailure  = "E020"
	CodeStoreDecode   = "E021"
	CodeInvalidConfig = "E040"
	CodeConfigWatch   = "E041"
	CodeInternal      = "E099"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	CodeUpdating: {
		Category:   CategoryRuntime,
		Message:    "Cell is updating",
		Detail:     "A write was issued while the cell was running a notification pass or an initial subscribe call.",
		Suggestion: "Schedule the write on the loop instead of writing from an observer.",
		DocURL:     "https://vcell.dev/docs/errors/E001",
	},
	CodeUninitialized: {
		Category:   CategoryRuntime,
		Message:    "Cell read before first set",
		Detail:     "The cell was created without a value and nothing has set it yet.",
		Suggestion: "Call Set before reading, or subscribe to be told when the value arrives.",
		DocURL:     "https://vcell.dev/docs/errors/E002",
	},
	CodeReadOnly: {
		Category: CategoryProtocol,
		Message:  "Cell is read-only",
		Detail:   "The live binding for this cell does not accept writes from clients.",
		DocURL:   "https://vcell.dev/docs/errors/E003",
	},
	CodeUnknownCell: {
		Category: CategoryProtocol,
		Message:  "Unknown cell",
		Detail:   "No cell is registered under the requested name.",
		DocURL:   "https://vcell.dev/docs/errors/E004",
	},
	CodeInvalidFrame: {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "The message could not be decoded, or its value does not fit the cell type.",
		DocURL:   "https://vcell.dev/docs/errors/E005",
	},
	CodeLoopStopped: {
		Category: CategoryRuntime,
		Message:  "Application loop stopped",
		Detail:   "The loop that owns the cells is no longer running.",
		DocURL:   "https://vcell.dev/docs/errors/E006",
	},

	// ============================================
	// Store Errors (E020-E039)
	// ============================================

	CodeStoreFailure: {
		Category: CategoryStore,
		Message:  "Store operation failed",
		Detail:   "The persistence backend returned an error.",
		DocURL:   "https://vcell.dev/docs/errors/E020",
	},
	CodeStoreDecode: {
		Category:   CategoryStore,
		Message:    "Persisted value could not be decoded",
		Detail:     "The stored bytes do not decode into the cell's value type.",
		Suggestion: "Delete the stale key or migrate it to the current shape.",
		DocURL:     "https://vcell.dev/docs/errors/E021",
	},

	// ============================================
	// Config Errors (E040-E059)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed or failed validation.",
		DocURL:   "https://vcell.dev/docs/errors/E040",
	},
	CodeConfigWatch: {
		Category: CategoryConfig,
		Message:  "Configuration watch failed",
		Detail:   "The file watcher reported an error.",
		DocURL:   "https://vcell.dev/docs/errors/E041",
	},

	CodeInternal: {
		Category: CategoryCLI,
		Message:  "Unexpected error",
		DocURL:   "https://vcell.dev/docs/errors/E099",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
