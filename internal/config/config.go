package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type AudioConfig struct {
	Device       string `yaml:"device"`
	SampleRate   int    `yaml:"sample_rate"`
	FrameLength  int    `yaml:"frame_length"`
	DebugDumpDir string `yaml:"debug_dump_dir"`
}

type WakeConfig struct {
	Mode        string  `yaml:"mode"` // mock, energy
	Sensitivity float64 `yaml:"sensitivity"`
}

type SpeechConfig struct {
	VADMode           string  `yaml:"vad_mode"` // mock, rms
	SilenceThreshold  float64 `yaml:"silence_threshold"`
	SilenceDurationMS int     `yaml:"silence_duration_ms"`
	MaxUtteranceSecs  float64 `yaml:"max_utterance_seconds"`
	SpeechOnsetFrames int     `yaml:"speech_onset_frames"`
	SilenceExitFrames int     `yaml:"silence_exit_frames"`
}

type ASRConfig struct {
	Mode      string `yaml:"mode"` // mock, exec, whisper
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
}

type IntentConfig struct {
	CommandsPath           string  `yaml:"commands_path"`
	DeterministicThreshold float64 `yaml:"deterministic_threshold"`
	LLMFallbackThreshold   float64 `yaml:"llm_fallback_threshold"`
}

type ExecutionConfig struct {
	ConfirmationTimeoutSecs int    `yaml:"confirmation_timeout_seconds"`
	DryRun                  bool   `yaml:"dry_run"`
	ConfirmChannel          string `yaml:"confirm_channel"` // file, bus
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // groq, mistral, mock
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TTSModel    string  `yaml:"tts_model"`
	TTSVoice    string  `yaml:"tts_voice"`
}

type SearchConfig struct {
	Enabled        bool   `yaml:"enabled"`
	TimeoutMS      int    `yaml:"timeout_ms"`
	ProbeTimeoutMS int    `yaml:"probe_timeout_ms"`
	Country        string `yaml:"country"`
}

type UIConfig struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMS int  `yaml:"timeout_ms"`
}

type SpeechOutputConfig struct {
	Enabled bool `yaml:"enabled"`
}

type EventStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxUtterances int    `yaml:"max_utterances"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	DaemonName   string             `yaml:"daemon_name"`
	Environment  string             `yaml:"environment"`
	HTTP         HTTPConfig         `yaml:"http"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Bus          BusConfig          `yaml:"bus"`
	Audio        AudioConfig        `yaml:"audio"`
	Wake         WakeConfig         `yaml:"wake"`
	Speech       SpeechConfig       `yaml:"speech"`
	ASR          ASRConfig          `yaml:"asr"`
	Intent       IntentConfig       `yaml:"intent"`
	Execution    ExecutionConfig    `yaml:"execution"`
	LLM          LLMConfig          `yaml:"llm"`
	Search       SearchConfig       `yaml:"search"`
	UI           UIConfig           `yaml:"ui"`
	SpeechOutput SpeechOutputConfig `yaml:"speech_output"`
	EventStore   EventStoreConfig   `yaml:"event_store"`
}

func Default() Config {
	return Config{
		DaemonName:  "sottod",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "127.0.0.1",
			Port: 8090,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9092",
		},
		Bus: BusConfig{
			Enabled:        false,
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Audio: AudioConfig{
			Device:      "default",
			SampleRate:  16000,
			FrameLength: 512,
		},
		Wake: WakeConfig{
			Mode:        "energy",
			Sensitivity: 0.5,
		},
		Speech: SpeechConfig{
			VADMode:           "rms",
			SilenceThreshold:  0.015,
			SilenceDurationMS: 900,
			MaxUtteranceSecs:  12,
			SpeechOnsetFrames: 3,
			SilenceExitFrames: 30,
		},
		ASR: ASRConfig{
			Mode:     "mock",
			Language: "en",
		},
		Intent: IntentConfig{
			CommandsPath:           "commands.json",
			DeterministicThreshold: 0.8,
			LLMFallbackThreshold:   0.9,
		},
		Execution: ExecutionConfig{
			ConfirmationTimeoutSecs: 15,
			DryRun:                  false,
			ConfirmChannel:          "file",
		},
		LLM: LLMConfig{
			Provider:    "groq",
			Model:       "llama-3.1-8b-instant",
			Temperature: 0.2,
			MaxTokens:   256,
			TTSModel:    "canopylabs/orpheus-v1-english",
			TTSVoice:    "alloy",
		},
		Search: SearchConfig{
			Enabled:        true,
			TimeoutMS:      12000,
			ProbeTimeoutMS: 800,
			Country:        "",
		},
		UI: UIConfig{
			Enabled:   true,
			TimeoutMS: 6000,
		},
		SpeechOutput: SpeechOutputConfig{
			Enabled: false,
		},
		EventStore: EventStoreConfig{
			Path:          "./data/sotto-events.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxUtterances: 10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, errors.New("config file not found: " + path)
			}
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration accessors so callers never re-derive units from raw config ints.

func (c SpeechConfig) SilenceDuration() time.Duration {
	return time.Duration(c.SilenceDurationMS) * time.Millisecond
}

func (c SpeechConfig) MaxUtterance() time.Duration {
	return time.Duration(c.MaxUtteranceSecs * float64(time.Second))
}

func (c ExecutionConfig) ConfirmationTimeout() time.Duration {
	return time.Duration(c.ConfirmationTimeoutSecs) * time.Second
}

func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c SearchConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

func (c UIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.DaemonName, "SOTTO_DAEMON_NAME")
	overrideString(&cfg.Environment, "SOTTO_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "SOTTO_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "SOTTO_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "SOTTO_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "SOTTO_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "SOTTO_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "SOTTO_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Enabled, "SOTTO_BUS_ENABLED")
	overrideBool(&cfg.Bus.Embedded, "SOTTO_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "SOTTO_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "SOTTO_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "SOTTO_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "SOTTO_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "SOTTO_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "SOTTO_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "SOTTO_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Audio.Device, "SOTTO_AUDIO_DEVICE")
	overrideInt(&cfg.Audio.SampleRate, "SOTTO_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.FrameLength, "SOTTO_AUDIO_FRAME_LENGTH")
	overrideString(&cfg.Audio.DebugDumpDir, "SOTTO_DEBUG_AUDIO_DIR")
	overrideString(&cfg.Wake.Mode, "SOTTO_WAKE_MODE")
	overrideFloat(&cfg.Wake.Sensitivity, "SOTTO_WAKE_SENSITIVITY")
	overrideString(&cfg.Speech.VADMode, "SOTTO_SPEECH_VAD_MODE")
	overrideFloat(&cfg.Speech.SilenceThreshold, "SOTTO_SPEECH_SILENCE_THRESHOLD")
	overrideInt(&cfg.Speech.SilenceDurationMS, "SOTTO_SPEECH_SILENCE_DURATION_MS")
	overrideFloat(&cfg.Speech.MaxUtteranceSecs, "SOTTO_SPEECH_MAX_UTTERANCE_SECONDS")
	overrideString(&cfg.ASR.Mode, "SOTTO_ASR_MODE")
	overrideString(&cfg.ASR.Command, "SOTTO_ASR_COMMAND")
	overrideString(&cfg.ASR.ModelPath, "SOTTO_ASR_MODEL_PATH")
	overrideString(&cfg.ASR.Language, "SOTTO_ASR_LANGUAGE")
	overrideString(&cfg.Intent.CommandsPath, "SOTTO_INTENT_COMMANDS_PATH")
	overrideFloat(&cfg.Intent.DeterministicThreshold, "SOTTO_INTENT_DETERMINISTIC_THRESHOLD")
	overrideFloat(&cfg.Intent.LLMFallbackThreshold, "SOTTO_INTENT_LLM_FALLBACK_THRESHOLD")
	overrideInt(&cfg.Execution.ConfirmationTimeoutSecs, "SOTTO_EXECUTION_CONFIRMATION_TIMEOUT_SECONDS")
	overrideBool(&cfg.Execution.DryRun, "SOTTO_EXECUTION_DRY_RUN")
	overrideString(&cfg.Execution.ConfirmChannel, "SOTTO_EXECUTION_CONFIRM_CHANNEL")
	overrideString(&cfg.LLM.Provider, "SOTTO_LLM_PROVIDER")
	overrideString(&cfg.LLM.Model, "SOTTO_LLM_MODEL")
	overrideFloat(&cfg.LLM.Temperature, "SOTTO_LLM_TEMPERATURE")
	overrideInt(&cfg.LLM.MaxTokens, "SOTTO_LLM_MAX_TOKENS")
	overrideString(&cfg.LLM.TTSModel, "SOTTO_LLM_TTS_MODEL")
	overrideString(&cfg.LLM.TTSVoice, "SOTTO_LLM_TTS_VOICE")
	overrideBool(&cfg.Search.Enabled, "SOTTO_SEARCH_ENABLED")
	overrideInt(&cfg.Search.TimeoutMS, "SOTTO_SEARCH_TIMEOUT_MS")
	overrideInt(&cfg.Search.ProbeTimeoutMS, "SOTTO_SEARCH_PROBE_TIMEOUT_MS")
	overrideString(&cfg.Search.Country, "SOTTO_SEARCH_COUNTRY")
	overrideBool(&cfg.UI.Enabled, "SOTTO_UI_ENABLED")
	overrideInt(&cfg.UI.TimeoutMS, "SOTTO_UI_TIMEOUT_MS")
	overrideBool(&cfg.SpeechOutput.Enabled, "SOTTO_SPEECH_OUTPUT_ENABLED")
	overrideString(&cfg.EventStore.Path, "SOTTO_EVENT_STORE_PATH")
	overrideString(&cfg.EventStore.RetentionMode, "SOTTO_EVENT_STORE_RETENTION_MODE")
	overrideInt(&cfg.EventStore.RetentionDays, "SOTTO_EVENT_STORE_RETENTION_DAYS")
	overrideInt(&cfg.EventStore.MaxUtterances, "SOTTO_EVENT_STORE_MAX_UTTERANCES")
	overrideBool(&cfg.EventStore.VacuumOnStart, "SOTTO_EVENT_STORE_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.DaemonName == "" {
		return errors.New("daemon_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if cfg.Bus.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.FrameLength <= 0 {
		return errors.New("audio.frame_length must be positive")
	}
	switch cfg.Wake.Mode {
	case "mock", "energy":
	default:
		return errors.New("wake.mode must be one of mock|energy")
	}
	switch cfg.Speech.VADMode {
	case "mock", "rms":
	default:
		return errors.New("speech.vad_mode must be one of mock|rms")
	}
	if cfg.Speech.SilenceThreshold < 0 || cfg.Speech.SilenceThreshold > 1 {
		return errors.New("speech.silence_threshold must be within [0,1]")
	}
	if cfg.Speech.SilenceDurationMS <= 0 {
		return errors.New("speech.silence_duration_ms must be positive")
	}
	if cfg.Speech.MaxUtteranceSecs <= 0 {
		return errors.New("speech.max_utterance_seconds must be positive")
	}
	switch cfg.ASR.Mode {
	case "mock", "exec", "whisper":
	default:
		return errors.New("asr.mode must be one of mock|exec|whisper")
	}
	if cfg.ASR.Mode == "exec" && cfg.ASR.Command == "" {
		return errors.New("asr.command must be set when mode=exec")
	}
	if cfg.ASR.Mode == "whisper" && cfg.ASR.ModelPath == "" {
		return errors.New("asr.model_path must be set when mode=whisper")
	}
	if cfg.Intent.CommandsPath == "" {
		return errors.New("intent.commands_path must not be empty")
	}
	if cfg.Intent.DeterministicThreshold < 0 || cfg.Intent.DeterministicThreshold > 1 {
		return errors.New("intent.deterministic_threshold must be within [0,1]")
	}
	if cfg.Execution.ConfirmationTimeoutSecs <= 0 {
		return errors.New("execution.confirmation_timeout_seconds must be positive")
	}
	switch cfg.Execution.ConfirmChannel {
	case "file", "bus":
	default:
		return errors.New("execution.confirm_channel must be one of file|bus")
	}
	if cfg.Execution.ConfirmChannel == "bus" && !cfg.Bus.Enabled {
		return errors.New("execution.confirm_channel=bus requires bus.enabled")
	}
	switch cfg.LLM.Provider {
	case "groq", "mistral", "mock":
	default:
		return errors.New("llm.provider must be one of groq|mistral|mock")
	}
	if cfg.LLM.MaxTokens < 0 {
		return errors.New("llm.max_tokens must be >= 0")
	}
	if cfg.Search.Enabled {
		if cfg.Search.TimeoutMS <= 0 {
			return errors.New("search.timeout_ms must be positive")
		}
		if cfg.Search.ProbeTimeoutMS <= 0 {
			return errors.New("search.probe_timeout_ms must be positive")
		}
	}
	if cfg.UI.Enabled && cfg.UI.TimeoutMS <= 0 {
		return errors.New("ui.timeout_ms must be positive when ui is enabled")
	}
	if cfg.EventStore.Path == "" {
		return errors.New("event_store.path must not be empty")
	}
	switch cfg.EventStore.RetentionMode {
	case "ephemeral", "session", "persistent":
	default:
		return errors.New("event_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.EventStore.RetentionDays < 0 {
		return errors.New("event_store.retention_days must be >= 0")
	}
	return nil
}
