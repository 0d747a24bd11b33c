package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodregister/regnotify/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCouncilRegister_Combined(t *testing.T) {
	path := writeFile(t, "councils.yaml", `
cardiff:
  hygiene_and_standards:
    name: Cardiff Council
    name_welsh: Cyngor Caerdydd
    email: food@cardiff.gov.uk
    country: wales
    notify_addresses:
      - inbox1@cardiff.gov.uk
      - inbox2@cardiff.gov.uk
`)

	register, err := config.LoadCouncilRegister(path)
	require.NoError(t, err)

	cfg, ok := register.Find("cardiff")
	require.True(t, ok)
	require.NotNil(t, cfg.HygieneAndStandards)
	assert.Equal(t, "Cardiff Council", cfg.HygieneAndStandards.Name)
	assert.Len(t, cfg.HygieneAndStandards.NotifyAddresses, 2)
	assert.Equal(t, []string{"cardiff"}, register.Slugs())
}

func TestLoadCouncilRegister_Split(t *testing.T) {
	path := writeFile(t, "councils.yaml", `
west-dorset:
  hygiene:
    name: West Dorset District Council
    email: hygiene@westdorset.gov.uk
    country: england
    notify_addresses: [hygiene-inbox@westdorset.gov.uk]
  standards:
    name: Dorset County Council
    email: standards@dorset.gov.uk
    country: england
    notify_addresses: [standards-inbox@dorset.gov.uk]
`)

	register, err := config.LoadCouncilRegister(path)
	require.NoError(t, err)

	cfg, ok := register.Find("west-dorset")
	require.True(t, ok)
	assert.Nil(t, cfg.HygieneAndStandards)
	require.NotNil(t, cfg.Hygiene)
	require.NotNil(t, cfg.Standards)
}

func TestLoadCouncilRegister_RejectsMixedShape(t *testing.T) {
	path := writeFile(t, "councils.yaml", `
broken:
  hygiene_and_standards:
    name: Combined
    email: combined@example.gov.uk
  hygiene:
    name: Also Hygiene
    email: hygiene@example.gov.uk
`)

	_, err := config.LoadCouncilRegister(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadCouncilRegister_RejectsIncompleteSplit(t *testing.T) {
	path := writeFile(t, "councils.yaml", `
broken:
  hygiene:
    name: Hygiene Only
    email: hygiene@example.gov.uk
`)

	_, err := config.LoadCouncilRegister(path)
	require.Error(t, err)
}

func TestLoadCouncilRegister_MissingFileReturnsEmptyRegister(t *testing.T) {
	register, err := config.LoadCouncilRegister(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, register.Slugs())
}

func TestLoadNotifyTemplates_MissingFileReturnsDefaults(t *testing.T) {
	tmpl, err := config.LoadNotifyTemplates(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "lc-new-registration", tmpl.Keys.LCNewRegistration)
	assert.Equal(t, "fbo-submission-complete-cy", tmpl.Keys.FBOSubmissionCompleteWelsh)
	assert.NotEmpty(t, tmpl.FutureDeliveryEmail)
}

func TestLoadNotifyTemplates_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "templates.yaml", `
notify_template_keys:
  lc_new_registration: custom-lc-template
future_delivery_email: fd@food.example
`)

	tmpl, err := config.LoadNotifyTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-lc-template", tmpl.Keys.LCNewRegistration)
	assert.Equal(t, "fd@food.example", tmpl.FutureDeliveryEmail)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "fbo-feedback", tmpl.Keys.FBOFeedback)
}

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		c := &config.AppConfig{LogLevel: in}
		assert.Equal(t, want, c.SlogLevel(), "level %q", in)
	}
}

func TestAppConfig_DerivedPaths(t *testing.T) {
	c := &config.AppConfig{DataDir: "/var/lib/regnotify"}
	assert.Equal(t, "/var/lib/regnotify/logs", c.LogDir())
	assert.Equal(t, "/var/lib/regnotify/regnotify.db", c.DBPath())
}
