package config

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

// LLM providers
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	LLM      LLMConfig      `yaml:"llm"`
	Retry    retry.Policy   `yaml:"retry"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Poller   PollerConfig   `yaml:"poller"`
	Entities EntitiesConfig `yaml:"entities"`
	Paths    PathsConfig    `yaml:"paths"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AudioConfig struct {
	SampleRate       int     `yaml:"sample_rate"`
	ChunkSeconds     int     `yaml:"chunk_seconds"`
	InputFormat      string  `yaml:"input_format"` // avfoundation, pulse, alsa
	PrimaryDevice    string  `yaml:"primary_device"`
	SecondaryDevice  string  `yaml:"secondary_device"`
	BufferSeconds    int     `yaml:"buffer_seconds"`
	SilenceThreshold float32 `yaml:"silence_threshold"`
	SilenceChunks    int     `yaml:"silence_chunks"`
	FFmpegPath       string  `yaml:"ffmpeg_path"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type LLMConfig struct {
	Provider        string   `yaml:"provider"` // ollama, gemini
	Model           string   `yaml:"model"`
	Host            string   `yaml:"host"`
	APIKeys         []string `yaml:"api_keys"`
	MaxContextChars int      `yaml:"max_context_chars"`
}

type PipelineConfig struct {
	QueueSize        int           `yaml:"queue_size"`
	TempDir          string        `yaml:"temp_dir"`
	TranscribeTimeout time.Duration `yaml:"transcribe_timeout"`
	SummarizeTimeout time.Duration `yaml:"summarize_timeout"`
	AppendTimeout    time.Duration `yaml:"append_timeout"`
	AggregateTimeout time.Duration `yaml:"aggregate_timeout"`
}

type PollerConfig struct {
	Enabled           bool          `yaml:"enabled"`
	SourceRef         string        `yaml:"source_ref"`
	AnalysisRef       string        `yaml:"analysis_ref"`
	Interval          time.Duration `yaml:"interval"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	GracePeriod       time.Duration `yaml:"grace_period"`
	CompletionMarkers []string      `yaml:"completion_markers"`
	StateFile         string        `yaml:"state_file"`
}

type EntitiesConfig struct {
	PeopleFile      string        `yaml:"people_file"`
	ProjectsFile    string        `yaml:"projects_file"`
	GlossaryFile    string        `yaml:"glossary_file"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FuzzyThreshold  float64       `yaml:"fuzzy_threshold"`
}

type PathsConfig struct {
	Documents string `yaml:"documents"`
	Minutes   string `yaml:"minutes"`
	Control   string `yaml:"control"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Audio.PrimaryDevice == "" {
		return fmt.Errorf("audio.primary_device is required")
	}
	if c.Paths.Documents == "" {
		return fmt.Errorf("paths.documents is required")
	}

	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = ProviderOllama
	case ProviderOllama:
	case ProviderGemini:
		if len(c.LLM.APIKeys) == 0 {
			return fmt.Errorf("llm.api_keys is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported llm.provider: %s", c.LLM.Provider)
	}

	if c.Whisper.Language == "" {
		c.Whisper.Language = "ru"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.ChunkSeconds == 0 {
		c.Audio.ChunkSeconds = 30
	}
	if c.Audio.InputFormat == "" {
		c.Audio.InputFormat = "avfoundation"
	}
	if c.Audio.BufferSeconds == 0 {
		c.Audio.BufferSeconds = 4 * c.Audio.ChunkSeconds
	}
	if c.Audio.SilenceThreshold == 0 {
		c.Audio.SilenceThreshold = 0.001
	}
	if c.Audio.SilenceChunks == 0 {
		c.Audio.SilenceChunks = 3
	}
	if c.Audio.FFmpegPath == "" {
		c.Audio.FFmpegPath = "ffmpeg"
	}

	if c.LLM.Model == "" {
		if c.LLM.Provider == ProviderGemini {
			c.LLM.Model = "gemini-2.5-flash"
		} else {
			c.LLM.Model = "llama3"
		}
	}
	if c.LLM.Host == "" && c.LLM.Provider == ProviderOllama {
		c.LLM.Host = "http://localhost:11434"
	}
	if c.LLM.MaxContextChars == 0 {
		c.LLM.MaxContextChars = 12000
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.Default()
	}

	if c.Pipeline.QueueSize == 0 {
		c.Pipeline.QueueSize = 64
	}
	if c.Pipeline.TempDir == "" {
		c.Pipeline.TempDir = "data/temp"
	}
	if c.Pipeline.TranscribeTimeout == 0 {
		c.Pipeline.TranscribeTimeout = 2 * time.Minute
	}
	if c.Pipeline.SummarizeTimeout == 0 {
		c.Pipeline.SummarizeTimeout = time.Minute
	}
	if c.Pipeline.AppendTimeout == 0 {
		c.Pipeline.AppendTimeout = 15 * time.Second
	}
	if c.Pipeline.AggregateTimeout == 0 {
		c.Pipeline.AggregateTimeout = 3 * time.Minute
	}

	if c.Poller.SourceRef == "" {
		c.Poller.SourceRef = "meetings"
	}
	if c.Poller.AnalysisRef == "" {
		c.Poller.AnalysisRef = "analysis"
	}
	if c.Poller.AnalysisRef == c.Poller.SourceRef {
		return fmt.Errorf("poller.analysis_ref must differ from poller.source_ref")
	}
	if c.Poller.Interval == 0 {
		c.Poller.Interval = 60 * time.Second
	}
	if c.Poller.FetchTimeout == 0 {
		c.Poller.FetchTimeout = 30 * time.Second
	}
	if c.Poller.GracePeriod == 0 {
		c.Poller.GracePeriod = 10 * time.Second
	}
	if len(c.Poller.CompletionMarkers) == 0 {
		c.Poller.CompletionMarkers = []string{"[MEETING_COMPLETE]", "## Meeting summary"}
	}

	if c.Entities.FuzzyThreshold == 0 {
		c.Entities.FuzzyThreshold = 0.6
	}
	if c.Entities.RefreshInterval == 0 {
		c.Entities.RefreshInterval = 30 * time.Minute
	}

	if c.Paths.Minutes == "" {
		c.Paths.Minutes = "data/minutes"
	}
	if c.Paths.Control == "" {
		c.Paths.Control = "/tmp"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// ChunkDuration is the fixed audio chunk length.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.Audio.ChunkSeconds) * time.Second
}
