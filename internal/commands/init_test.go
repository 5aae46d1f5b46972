package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/projects"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "fundops-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "fundops")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/fundops")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runFundops(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runFundops(t, "init", dir, "--name", "科研处", "--university", "示例大学")
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initWorkspace(t)

	expectedDirs := []string{
		"projects",
		"deposits",
		"drafts",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := initWorkspace(t)

	data, err := os.ReadFile(filepath.Join(dir, "fundops.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: 科研处")
	assert.Contains(t, contents, "university: 示例大学")
	assert.Contains(t, contents, "management_rate: 0.05")
}

func TestInit_Projects(t *testing.T) {
	dir := initWorkspace(t)

	f, err := os.Open(filepath.Join(dir, projects.Dir, projects.File))
	require.NoError(t, err)
	defer f.Close()

	projs, err := projects.ReadProjects(f)
	require.NoError(t, err)
	assert.Len(t, projs, 6, "demo registry has 6 projects")
}

func TestInit_ActivityLog(t *testing.T) {
	dir := initWorkspace(t)

	data, err := os.ReadFile(filepath.Join(dir, "logs", "activity.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "workspace_initialized")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runFundops(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_Twice(t *testing.T) {
	dir := initWorkspace(t)
	out, err := runFundops(t, "init", dir, "--name", "科研处")
	require.Error(t, err)
	assert.Contains(t, out, "already contains fundops.yaml")
}

func TestInit_GitHistory(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := runFundops(t, "init", dir, "--name", "科研处", "--git")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	data, err := os.ReadFile(filepath.Join(dir, "fundops.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "enabled: true")

	out, err = runFundops(t, "history", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "init: 科研处")
}

func TestHistory_Disabled(t *testing.T) {
	dir := initWorkspace(t)
	out, err := runFundops(t, "history", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "not enabled")
}
