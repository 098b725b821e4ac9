package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/pkg/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("port"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "check")
}

func TestHealthEndpoint(t *testing.T) {
	t.Setenv("SYSTEM_PROMPT_PATH", "../../configs/system_prompt.yaml")
	router := server.NewRouter(config.LoadConfig())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCheckCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/llm/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"OK"}}]}`))
	})
	mux.HandleFunc("/gov", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[{"market":"Pune"}]}`))
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("OPENROUTER_BASE_URL", upstream.URL+"/llm")
	t.Setenv("DATA_GOV_API_KEY", "gov-key")
	t.Setenv("DATA_GOV_BASE_URL", upstream.URL+"/gov")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "completion provider: ok")
	assert.Contains(t, out.String(), "mandi data source: ok (1 records)")
	assert.NotContains(t, out.String(), "missing.env", "dotenv warning belongs in the structured log")
}

func TestSetupLoadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("REELS_QUERY=organic farming shorts\nHTTP_TIMEOUT=45\n"), 0o600))

	// registered so the values written by the dotenv loader are undone
	t.Setenv("REELS_QUERY", "")
	t.Setenv("HTTP_TIMEOUT", "")
	require.NoError(t, os.Unsetenv("REELS_QUERY"))
	require.NoError(t, os.Unsetenv("HTTP_TIMEOUT"))

	c := &cli{envFile: envFile}
	c.setup(newRootCmd(), nil)

	require.NotNil(t, c.cfg)
	assert.Equal(t, "organic farming shorts", c.cfg.ReelsQuery)
	assert.Equal(t, 45*time.Second, c.cfg.HTTPTimeout)
}

func TestCheckCommandReportsFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer upstream.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("OPENROUTER_BASE_URL", upstream.URL)
	t.Setenv("DATA_GOV_API_KEY", "gov-key")
	t.Setenv("DATA_GOV_BASE_URL", upstream.URL)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "completion provider: FAIL")
	assert.Contains(t, out.String(), "mandi data source: FAIL")
}
