package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const validSettings = `
https://alpha.shotgunstudio.com:
  script_name: reporter
  script_key: s3cret
  global_data_point_entity: CustomNonProjectEntity01
  track_globally:
    - entity_type: HumanUser
      filters: []
      write_to_field: sg_active_users
https://beta.shotgunstudio.com:
  script_name: reporter
  script_key: other
  project_data_point_entity: CustomEntity02
  track_per_project:
    - entity_type: Shot
      filters:
        - [sg_status_list, is, ip]
      write_to_field: sg_shots_in_progress
`

func TestLoadFrom_Defaults(t *testing.T) {
	opts, err := LoadFrom("/opt/datapoints")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/opt/datapoints", "settings.yml"), opts.SettingsPath)
	require.Equal(t, filepath.Join("/opt/datapoints", "logs"), opts.Log.Dir)
	require.Equal(t, "info", opts.Log.Level)
	require.Empty(t, opts.HistoryPath)
	require.Empty(t, opts.PushgatewayURL)
	require.Zero(t, opts.HTTPTimeout)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("DATAPOINTS_SETTINGS_PATH", "/etc/datapoints/settings.yml")
	t.Setenv("DATAPOINTS_LOG_DIR", "/var/log/datapoints")
	t.Setenv("DATAPOINTS_LOG_LEVEL", "debug")
	t.Setenv("DATAPOINTS_HISTORY_PATH", "/var/lib/datapoints/history.db")
	t.Setenv("DATAPOINTS_PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("DATAPOINTS_HTTP_TIMEOUT", "45s")

	opts, err := LoadFrom("/opt/datapoints")
	require.NoError(t, err)
	require.Equal(t, "/etc/datapoints/settings.yml", opts.SettingsPath)
	require.Equal(t, "/var/log/datapoints", opts.Log.Dir)
	require.Equal(t, "debug", opts.Log.Level)
	require.Equal(t, "/var/lib/datapoints/history.db", opts.HistoryPath)
	require.Equal(t, "http://pushgateway:9091", opts.PushgatewayURL)
	require.Equal(t, 45*time.Second, opts.HTTPTimeout)
}

func TestLoadFrom_InvalidTimeout(t *testing.T) {
	t.Setenv("DATAPOINTS_HTTP_TIMEOUT", "soon")
	_, err := LoadFrom("/opt/datapoints")
	require.ErrorContains(t, err, "DATAPOINTS_HTTP_TIMEOUT")
}

func TestParseSettings_Valid(t *testing.T) {
	settings, err := ParseSettings("settings.yml", []byte(validSettings))
	require.NoError(t, err)
	require.Len(t, settings.Sites, 2)

	alpha := settings.Sites[0]
	require.Equal(t, "https://alpha.shotgunstudio.com", alpha.URL)
	require.Equal(t, "reporter", alpha.Credentials.ScriptName)
	require.Equal(t, "s3cret", alpha.Credentials.ScriptKey)
	require.Equal(t, "CustomNonProjectEntity01", alpha.GlobalEntity)
	require.Equal(t, []TrackingRule{{EntityType: "HumanUser", Filters: []any{}, WriteToField: "sg_active_users"}}, alpha.TrackGlobally)
	require.Empty(t, alpha.ProjectEntity)
	require.Nil(t, alpha.TrackPerProject)

	beta := settings.Sites[1]
	require.Equal(t, "https://beta.shotgunstudio.com", beta.URL)
	require.Equal(t, "CustomEntity02", beta.ProjectEntity)
	require.Len(t, beta.TrackPerProject, 1)
	require.Equal(t, []any{[]any{"sg_status_list", "is", "ip"}}, beta.TrackPerProject[0].Filters)
}

func TestParseSettings_PreservesFileOrder(t *testing.T) {
	data := `
https://zulu.example.com:
  script_name: a
  script_key: b
https://alpha.example.com:
  script_name: a
  script_key: b
https://mike.example.com:
  script_name: a
  script_key: b
`
	settings, err := ParseSettings("settings.yml", []byte(data))
	require.NoError(t, err)

	var urls []string
	for _, site := range settings.Sites {
		urls = append(urls, site.URL)
	}
	require.Equal(t, []string{"https://zulu.example.com", "https://alpha.example.com", "https://mike.example.com"}, urls)
}

func TestParseSettings_SiteWithoutScopesIsValid(t *testing.T) {
	data := `
https://alpha.example.com:
  script_name: a
  script_key: b
`
	settings, err := ParseSettings("settings.yml", []byte(data))
	require.NoError(t, err)
	require.Len(t, settings.Sites, 1)
	require.Empty(t, settings.Sites[0].GlobalEntity)
	require.Empty(t, settings.Sites[0].ProjectEntity)
}

func TestParseSettings_Empty(t *testing.T) {
	for name, data := range map[string]string{
		"no content": "",
		"comment":    "# nothing here\n",
		"null":       "~\n",
		"false":      "false\n",
		"empty map":  "{}\n",
		"empty list": "[]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSettings("settings.yml", []byte(data))
			require.ErrorIs(t, err, ErrEmptySettings)
		})
	}
}

func TestParseSettings_Unparsable(t *testing.T) {
	_, err := ParseSettings("settings.yml", []byte("https://a: [unclosed"))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorContains(t, err, "could not parse settings.yml")

	_, err = ParseSettings("settings.yml", []byte("- just\n- a list\n"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseSettings_CollectsAllViolations(t *testing.T) {
	data := `
https://alpha.example.com:
  script_name: reporter
  global_data_point_entity: CustomNonProjectEntity01
https://beta.example.com:
  script_key: key
  project_data_point_entity: CustomEntity02
  track_per_project:
    - entity_type: Shot
      filters: []
not a url:
  script_name: a
  script_key: b
`
	_, err := ParseSettings("settings.yml", []byte(data))
	require.ErrorIs(t, err, ErrInvalidConfig)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "settings.yml", verr.Path)

	got := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		got = append(got, v.String())
	}
	require.ElementsMatch(t, []string{
		"https://alpha.example.com: script_key is required",
		"https://alpha.example.com: track_globally is required when global_data_point_entity is set",
		"https://beta.example.com: script_name is required",
		"https://beta.example.com: track_per_project[0].write_to_field is required",
		"not a url: is not a valid site URL",
	}, got)
}

func TestParseSettings_BlankCredentials(t *testing.T) {
	data := `
https://alpha.example.com:
  script_name: reporter
  script_key: s3cret
https://beta.example.com:
  script_name: "   "
  script_key: "\t"
`
	settings, err := ParseSettings("settings.yml", []byte(data))
	require.Nil(t, settings)
	require.ErrorIs(t, err, ErrInvalidConfig)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	got := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		got = append(got, v.String())
	}
	require.ElementsMatch(t, []string{
		"https://beta.example.com: script_name is blank",
		"https://beta.example.com: script_key is blank",
	}, got)
}

func TestParseSettings_NonEmptyList(t *testing.T) {
	_, err := ParseSettings("settings.yml", []byte("- https://alpha.example.com\n"))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorContains(t, err, "expected a mapping of site URLs")
}

func TestParseSettings_DuplicateSite(t *testing.T) {
	data := `
https://alpha.example.com:
  script_name: a
  script_key: b
https://alpha.example.com:
  script_name: c
  script_key: d
`
	_, err := ParseSettings("settings.yml", []byte(data))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorContains(t, err, "https://alpha.example.com: is defined more than once")
}

func TestLoadSettings_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	_, err := LoadSettings(path)
	require.ErrorIs(t, err, ErrSettingsNotFound)
	require.ErrorContains(t, err, path)
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(validSettings), 0o600))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, path, settings.Path)
	require.Len(t, settings.Sites, 2)
}

func TestCredentials_NeverRendered(t *testing.T) {
	creds := Credentials{ScriptName: "reporter", ScriptKey: "s3cret"}

	require.NotContains(t, fmt.Sprintf("%v %+v %#v %s", creds, creds, creds, creds), "s3cret")

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("connecting", "credentials", creds)
	require.NotContains(t, buf.String(), "s3cret")
	require.Contains(t, buf.String(), redacted)
}

func TestCredentials_Complete(t *testing.T) {
	require.True(t, Credentials{ScriptName: "a", ScriptKey: "b"}.Complete())
	require.False(t, Credentials{ScriptName: "a"}.Complete())
	require.False(t, Credentials{ScriptName: " ", ScriptKey: "b"}.Complete())
	require.False(t, Credentials{}.Complete())
}
