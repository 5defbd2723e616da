package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/testutil"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args in an isolated environment and
// returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	resetFlags(rootCmd)
	cfgFile = ""
	globalConfig = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeRoll(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	tpl := template.NewRegistry(nil).Lookup(template.DefaultName)
	b := testutil.NewPage(tpl).
		Cell(0, 0, testutil.VoterBlock("1", "ABC1234567", "सुनील पाटील", "रमेश पाटील", "12", "40", "पुरुष")).
		Cell(0, 1, testutil.VoterBlock("2", "ABC7654321", "सुनील पाटील", "रमेश पाटील", "12", "38", "पुरुष"))
	testutil.WriteRecording(t, dir, 2, b)
	return dir
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "voterroll", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"extract", "parse", "templates", "config", "version"} {
		assert.Contains(t, names, expected)
	}
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "electoral")
	assert.Contains(t, out, "Available Commands:")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "voterroll "))
}

func TestTemplatesCommand(t *testing.T) {
	out, _, err := execute(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "boothlist_division")
	assert.Contains(t, out, "wardwise")
	assert.Contains(t, out, "2480x3509")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voterroll.yaml")
	out, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.True(t, testutil.FileExists(path))

	_, _, err = execute(t, "config", "init", path)
	require.Error(t, err)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("VOTERROLL_TRANSLIT_API_KEY", "secret-key")
	out, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "boothlist_division")
	assert.NotContains(t, out, "secret-key")
}

func TestParseCSV(t *testing.T) {
	dir := writeRoll(t)
	out, _, err := execute(t, "parse", dir, "--translit", "local", "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "extraction_order", rows[0][0])
	assert.Equal(t, []string{"0", "2", "1", "ABC1234567"}, rows[1][:4])
	assert.Equal(t, "Suneel Pateel", rows[1][5])
	assert.Equal(t, "ABC7654321", rows[2][3])
}

func TestParseJSONToFile(t *testing.T) {
	dir := writeRoll(t)
	path := filepath.Join(t.TempDir(), "voters.json")
	out, _, err := execute(t, "parse", dir, "--translit", "none", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		RunID    string           `json:"run_id"`
		Template string           `json:"template"`
		Records  []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, "boothlist_division", doc.Template)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "", doc.Records[0]["name_english"])
}

func TestParsePageRangeOutsideRecordings(t *testing.T) {
	dir := writeRoll(t)
	_, _, err := execute(t, "parse", dir, "--pages", "5-6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selected range")
}

func TestParseMissingInput(t *testing.T) {
	_, _, err := execute(t, "parse", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestInvalidFlagValueFailsValidation(t *testing.T) {
	dir := writeRoll(t)
	_, _, err := execute(t, "parse", dir, "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline workers")
}

func TestExtractRecordedBackendPointsToParse(t *testing.T) {
	img := testutil.WriteImage(t, t.TempDir(), "page1.png", testutil.BlankPage(200, 280))
	_, _, err := execute(t, "extract", img, "--ocr-backend", "recorded")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse command")
}

func TestExtractRejectsMixedInputs(t *testing.T) {
	img := testutil.WriteImage(t, t.TempDir(), "page1.png", testutil.BlankPage(200, 280))
	_, _, err := execute(t, "extract", img, "roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}
