package config

const (
	defaultDataDir                 = "~/.local/share/cadenza"
	defaultLogDir                  = "~/.local/share/cadenza/logs"
	defaultLLMBaseURL              = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                = "google/gemini-3-flash-preview"
	defaultLLMReferer              = "https://github.com/cadenza-app/cadenza"
	defaultLLMTitle                = "Cadenza Concert Tagger"
	defaultLLMTimeoutSeconds       = 60
	defaultItemDelayMS             = 1000
	defaultConsistencyRetryDelayMS = 2000
	defaultImageTimeoutSeconds     = 20
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Pipeline: Pipeline{
			ItemDelayMS:             defaultItemDelayMS,
			ConsistencyRetryDelayMS: defaultConsistencyRetryDelayMS,
			ImageTimeoutSeconds:     defaultImageTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
