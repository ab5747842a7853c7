package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/orbit/internal/flyover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

const (
	echoHost       = "https://ip.orbit.test"
	geoHost        = "https://geo.orbit.test"
	predictionHost = "https://passes.orbit.test"
)

func setTestEnv(t *testing.T) {
	t.Helper()

	t.Setenv("ORBIT_ENV", envProd)
	t.Setenv("ORBIT_TIMEZONE", "UTC")
	t.Setenv("ORBIT_IP_ECHO_URL", echoHost+"/json")
	t.Setenv("ORBIT_GEOLOCATION_PROVIDER", "ipwhois")
	t.Setenv("ORBIT_GEOLOCATION_URL", geoHost)
	t.Setenv("ORBIT_FLYOVER_URL", predictionHost+"/json/")
}

func mockUpstreams(predictionBody map[string]any) {
	gock.New(echoHost).Get("/json").Reply(http.StatusOK).JSON(map[string]string{"ip": "162.245.144.188"})
	gock.New(geoHost).
		Get("/162.245.144.188").
		Reply(http.StatusOK).
		JSON(map[string]any{"latitude": 51.5, "longitude": -0.12})
	gock.New(predictionHost).
		Get("/json/").
		Reply(http.StatusOK).
		JSON(predictionBody)
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestNextCommands(t *testing.T) {
	for _, command := range []string{"next", "next-callback"} {
		t.Run(command, func(t *testing.T) {
			defer gock.Off()
			setTestEnv(t)
			mockUpstreams(map[string]any{
				"message": "success",
				"response": []map[string]int64{
					{"risetime": 134564234, "duration": 600},
					{"risetime": 134570000, "duration": 300},
				},
			})

			out, err := runRoot(t, command)

			require.NoError(t, err)
			assert.Equal(t,
				"Next pass at Sun Apr 07 1974 10:57:14 GMT+0000 (UTC) for 600 seconds\n"+
					"Next pass at Sun Apr 07 1974 12:33:20 GMT+0000 (UTC) for 300 seconds\n",
				out)
			assert.True(t, gock.IsDone())
		})
	}
}

func TestNextCommands_Failure(t *testing.T) {
	for _, command := range []string{"next", "next-callback"} {
		t.Run(command, func(t *testing.T) {
			defer gock.Off()
			setTestEnv(t)
			mockUpstreams(map[string]any{"message": "failure"})

			out, err := runRoot(t, command)

			require.ErrorIs(t, err, flyover.ErrUnsuccessful)
			assert.Empty(t, out)
		})
	}
}

func TestNextCommand_EmptyList(t *testing.T) {
	defer gock.Off()
	setTestEnv(t)
	mockUpstreams(map[string]any{"message": "success", "response": []any{}})

	out, err := runRoot(t, "next")

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNextCommand_InvalidConfig(t *testing.T) {
	setTestEnv(t)
	t.Setenv("ORBIT_GEOLOCATION_PROVIDER", "unknown")

	_, err := runRoot(t, "next")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type: unknown")
}

func TestNextCommand_RejectsArgs(t *testing.T) {
	_, err := runRoot(t, "next", "extra")

	require.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env          string
		debugEnabled bool
		warnEnabled  bool
	}{
		{env: envLocal, debugEnabled: true, warnEnabled: true},
		{env: envDev, debugEnabled: false, warnEnabled: true},
		{env: envProd, debugEnabled: false, warnEnabled: true},
		{env: "unknown", debugEnabled: false, warnEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := setupLogger(tt.env)

			require.NotNil(t, log)
			assert.Equal(t, tt.debugEnabled, log.Enabled(t.Context(), slog.LevelDebug))
			assert.Equal(t, tt.warnEnabled, log.Enabled(t.Context(), slog.LevelWarn))
		})
	}
}
