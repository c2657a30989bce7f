package configs

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()

	config, err := LoadConfigFromViper(v)
	require.NoError(t, err)

	assert.False(t, config.Verbose)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "json", config.OutputFormat)
	assert.NotEmpty(t, config.DataDir)

	assert.Equal(t, 16000, config.Audio.SampleRate)
	assert.Equal(t, "ffmpeg", config.Audio.FFmpegPath)
	assert.NotEmpty(t, config.Audio.ScratchDir)
	assert.False(t, config.Audio.KeepScratch)

	assert.NotEmpty(t, config.Upload.Dir)
	assert.Empty(t, config.Database.URL)
	assert.Equal(t, 4, config.Batch.MaxConcurrent)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("verbose", true)
	v.Set("output_format", "table")
	v.Set("database.url", "postgres://localhost:5432/speechcoach")
	v.Set("batch.max_concurrent", 8)

	config, err := LoadConfigFromViper(v)
	require.NoError(t, err)

	assert.True(t, config.Verbose)
	assert.Equal(t, "table", config.OutputFormat)
	assert.Equal(t, "postgres://localhost:5432/speechcoach", config.Database.URL)
	assert.Equal(t, 8, config.Batch.MaxConcurrent)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LogLevel:     "info",
			OutputFormat: "json",
			Audio:        AudioConfig{SampleRate: 16000},
			Batch:        BatchConfig{MaxConcurrent: 4},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("wrong_sample_rate", func(t *testing.T) {
		c := base()
		c.Audio.SampleRate = 44100
		assert.ErrorContains(t, c.Validate(), "sample_rate")
	})

	t.Run("zero_concurrency", func(t *testing.T) {
		c := base()
		c.Batch.MaxConcurrent = 0
		assert.ErrorContains(t, c.Validate(), "max_concurrent")
	})

	t.Run("unknown_output_format", func(t *testing.T) {
		c := base()
		c.OutputFormat = "xml"
		assert.ErrorContains(t, c.Validate(), "output_format")
	})
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	v := viper.New()
	v.Set("audio.sample_rate", 8000)

	config, err := LoadConfigFromViper(v)
	assert.Error(t, err)
	assert.Nil(t, config)
}
