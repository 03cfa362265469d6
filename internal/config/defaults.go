package config

const (
	defaultStagingDir         = "~/.local/share/keyframe/staging"
	defaultLogDir             = "~/.local/share/keyframe/logs"
	defaultAPIBind            = "127.0.0.1:8089"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultLLMBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel           = "gpt-4o-mini"
	defaultLLMTimeoutSeconds  = 60
	defaultDALLEBaseURL       = "https://api.openai.com/v1"
	defaultDALLEModel         = "dall-e-3"
	defaultFluxBaseURL        = "https://api.studio.nebius.com/v1"
	defaultFluxModel          = "black-forest-labs/flux-schnell"
	defaultImageTimeout       = 120
	defaultSpeechRegion       = "us-east-1"
	defaultSpeechEngine       = "standard"
	defaultNtfyTimeout        = 10
)

func defaultVoices() []string {
	return []string{"Joanna", "Matthew", "Kendra", "Amy", "Justin"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Images: Images{
			DALLE: ImageBackend{
				BaseURL: defaultDALLEBaseURL,
				Model:   defaultDALLEModel,
			},
			Flux: ImageBackend{
				BaseURL: defaultFluxBaseURL,
				Model:   defaultFluxModel,
			},
			TimeoutSeconds: defaultImageTimeout,
		},
		Speech: Speech{
			Region: defaultSpeechRegion,
			Engine: defaultSpeechEngine,
			Voices: defaultVoices(),
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
