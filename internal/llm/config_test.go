package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_ModelsPerTask(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "nvidia/nemotron-3-nano-30b-a3b:free", cfg.ModelFor(TaskBreakdown))
	assert.Equal(t, "google/gemini-2.0-flash-001", cfg.ModelFor(TaskSummary))
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120000, cfg.TaskTimeout(TaskBreakdown))
	assert.Equal(t, 60000, cfg.TaskTimeout(TaskSummary))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredential)

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = ProviderBedrock
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredential)
	cfg.AWSRegion = "us-west-2"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = ProviderOllama
	cfg.APIKey = ""
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "mystery"
	assert.Error(t, cfg.Validate())
}
