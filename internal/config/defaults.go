package config

const (
	defaultConfigPath                = "~/.config/podopt/config.toml"
	defaultDataDir                   = "~/.local/share/podopt"
	defaultLogDir                    = "~/.local/share/podopt/logs"
	defaultPrivateDir                = "~/.local/share/podopt/storage/private"
	defaultPublicDir                 = "~/.local/share/podopt/storage/public"
	defaultServerBind                = "127.0.0.1:7590"
	defaultPublicURL                 = "http://127.0.0.1:7590"
	defaultAuphonicBaseURL           = "https://auphonic.com/api"
	defaultAuphonicTimeoutSeconds    = 120
	defaultLowCreditThreshold        = 10
	defaultQuotaCheckIntervalMinutes = 0
	defaultOutputFormat              = "mp3"
	defaultBitrate                   = 128
	defaultLoudnessTarget            = -16
	defaultNoiseReductionAmount      = "auto"
	defaultWorkers                   = 2
	defaultQueueSize                 = 64
	defaultNotifyRequestTimeout      = 10
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"

	webhookRoute = "/api/auphonic"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			PrivateDir: defaultPrivateDir,
			PublicDir:  defaultPublicDir,
		},
		Server: Server{
			Bind:      defaultServerBind,
			PublicURL: defaultPublicURL,
		},
		Auphonic: Auphonic{
			BaseURL:                   defaultAuphonicBaseURL,
			TimeoutSeconds:            defaultAuphonicTimeoutSeconds,
			LowCreditThreshold:        defaultLowCreditThreshold,
			QuotaCheckIntervalMinutes: defaultQuotaCheckIntervalMinutes,
		},
		Optimization: Optimization{
			OutputFormat:          defaultOutputFormat,
			Bitrate:               defaultBitrate,
			AdaptiveLeveler:       true,
			LoudnessNormalization: true,
			LoudnessTarget:        defaultLoudnessTarget,
			Filtering:             true,
			NoiseHumReduction:     true,
			NoiseReductionAmount:  defaultNoiseReductionAmount,
			Workers:               defaultWorkers,
			QueueSize:             defaultQueueSize,
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
