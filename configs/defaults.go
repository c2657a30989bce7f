package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "speech-coach")

	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "json")
	}
	if !v.IsSet("data_dir") {
		v.Set("data_dir", dataDir)
	}

	// Audio decoding defaults. 16 kHz mono is the analysis contract.
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 16000)
	}
	if !v.IsSet("audio.ffmpeg_path") {
		v.Set("audio.ffmpeg_path", "ffmpeg")
	}
	if !v.IsSet("audio.scratch_dir") {
		v.Set("audio.scratch_dir", os.TempDir())
	}
	if !v.IsSet("audio.keep_scratch") {
		v.Set("audio.keep_scratch", false)
	}

	// Upload storage defaults
	if !v.IsSet("upload.dir") {
		v.Set("upload.dir", filepath.Join(dataDir, "speech_recordings"))
	}

	// Database defaults: empty URL selects the in-memory store
	if !v.IsSet("database.url") {
		v.Set("database.url", "")
	}

	// Batch analysis defaults
	if !v.IsSet("batch.max_concurrent") {
		v.Set("batch.max_concurrent", 4)
	}
}
