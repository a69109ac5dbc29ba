package di

// KeyNames holds the composition keys used by the host and utility roots.
type KeyNames struct {
	Logger         string
	StartupContext string
	Mode           string
	Folders        string
	Config         string
	Platform       string
	Certificate    string
	Events         string
	Components     string
	MainStore      string
	LogStore       string
	HTTPServer     string
	UtilityRouter  string
}

// Keys contains all composition keys.
var Keys = KeyNames{
	Logger:         "logger",
	StartupContext: "startup_context",
	Mode:           "mode",
	Folders:        "folders",
	Config:         "config",
	Platform:       "platform",
	Certificate:    "certificate",
	Events:         "events",
	Components:     "components",
	MainStore:      "main_store",
	LogStore:       "log_store",
	HTTPServer:     "http_server",
	UtilityRouter:  "utility_router",
}
