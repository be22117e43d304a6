package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/necta-results/internal/config"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/jonathan/necta-results/internal/server"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// resetFlags restores package flag variables between in-process runs
func resetFlags() {
	configPath = ""
	verbose = false
	outputJSON = false
	validateOutput = false
	useBrowser = false
	timeoutSeconds = 0
	userAgent = ""
	databaseURL = ""
	searchLimit = results.DefaultSearchLimit
	servePort = 0
	tokenHashPassword = false
	tokenSubject = server.RoleAdmin
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	out, err := runCLI(t, "", "resolve", "csee", "2022", "S0101")
	require.NoError(t, err)

	assert.Contains(t, out, "https://onlinesys.necta.go.tz/results/2022/csee/index.htm")
	assert.Contains(t, out, "skip 28")
	assert.Contains(t, out, "https://onlinesys.necta.go.tz/results/2022/csee/results/s0101.htm")
	assert.Contains(t, out, "table 2")
}

func TestResolveCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "", "resolve", "CSEE", "2014", "s0101", "--json")
	require.NoError(t, err)

	var got resolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "csee/2014/s0101", got.Identity)
	assert.Equal(t, "https://onlinesys.necta.go.tz/results/2014/csee/csee.htm", got.RosterURL)
	assert.Equal(t, 0, got.Skip)
	assert.Equal(t, "https://onlinesys.necta.go.tz/results/2014/csee/s0101.htm", got.SummaryURL)
	require.NotNil(t, got.TableIndex)
	assert.Equal(t, 0, *got.TableIndex)
}

func TestResolveCommand_ExamOnly(t *testing.T) {
	out, err := runCLI(t, "", "resolve", "csee", "2022", "--json")
	require.NoError(t, err)

	var got resolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 28, got.Skip)
	assert.Empty(t, got.SummaryURL)
	assert.Nil(t, got.TableIndex)
}

func TestCommands_ArgumentValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	tests := []struct {
		name string
		args []string
	}{
		{"schools missing year", []string{"schools", "csee"}},
		{"schools bad exam type", []string{"schools", "ftna", "2022"}},
		{"schools year too early", []string{"schools", "csee", "2005"}},
		{"students bad school number", []string{"students", "csee", "2022", "x0101"}},
		{"candidate without slash", []string{"candidate", "csee", "2022", "S01010001"}},
		{"search missing query", []string{"search", "csee", "2022"}},
		{"resolve non-numeric year", []string{"resolve", "csee", "twenty"}},
		{"validate missing file", []string{"validate", "roster"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func writeTempJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestValidateCommand(t *testing.T) {
	roster := types.NewRosterResult(
		types.ExamIdentity{Year: 2022, ExamType: types.CSEE},
		[]types.SchoolRecord{{SchoolNumber: "S0101", SchoolName: " AZANIA SECONDARY SCHOOL"}},
	)
	path := writeTempJSON(t, roster)

	out, err := runCLI(t, "", "validate", "roster", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid roster document")

	invalid := writeTempJSON(t, map[string]any{"exam_type": "ftna"})
	out, err = runCLI(t, "", "validate", "roster", invalid)
	require.Error(t, err)
	assert.Contains(t, out, "validation failed")

	_, err = runCLI(t, "", "validate", "transcript", path)
	assert.Error(t, err)
}

func TestTokenCommand_HashPassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "")

	out, err := runCLI(t, "s3cret\n", "token", "--hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = runCLI(t, "", "token", "--hash-password")
	assert.Error(t, err)
}

func TestTokenCommand_Mint(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret-at-least-16")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	out, err := runCLI(t, "", "token", "--subject", "ops")
	require.NoError(t, err)

	jwtConfig, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtConfig).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.GetSubject())
	assert.Equal(t, server.RoleAdmin, claims.GetRole())
}

func TestTokenCommand_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := runCLI(t, "", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadSettings_Precedence(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"user_agent": "from-file",
		"timeout_seconds": 10,
		"port": 9000
	}`), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("NECTA_TIMEOUT_SECONDS", "")
	t.Setenv("NECTA_USER_AGENT", "from-env")

	configPath = path
	timeoutSeconds = 5

	cfg, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TimeoutSeconds, "flag wins")
	assert.Equal(t, "from-env", cfg.UserAgent, "env beats file")
	assert.Equal(t, 9000, cfg.Port, "file beats default")
	assert.Equal(t, config.DefaultCacheTTLHours, cfg.CacheTTLHours)
}

func TestLoadSettings_VerboseFromConfigFile(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("NECTA_TIMEOUT_SECONDS", "")

	configureLogging(false)
	require.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"verbose": true}`), 0o600))
	configPath = path

	cfg, err := loadSettings()
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestLoadSettings_InvalidDatabaseURL(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("NECTA_TIMEOUT_SECONDS", "")

	databaseURL = "mysql://localhost/results"
	_, err := loadSettings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestEmit(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	roster := types.NewRosterResult(types.ExamIdentity{Year: 2022, ExamType: types.CSEE}, nil)

	var buf bytes.Buffer
	outputJSON = true
	validateOutput = true
	require.NoError(t, emit(&buf, schemas.KindRoster, roster, func() { t.Fatal("pretty printer used in JSON mode") }))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "csee", decoded["exam_type"])
	assert.Equal(t, []any{}, decoded["schools"])

	bad := &types.RosterResult{ExamType: "ftna", YearOfExam: 2022, Schools: []types.SchoolRecord{}}
	err := emit(&buf, schemas.KindRoster, bad, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestEmit_Pretty(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	called := false
	require.NoError(t, emit(&bytes.Buffer{}, schemas.KindRoster, nil, func() { called = true }))
	assert.True(t, called)
}
