package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ats-score-go/internal/report"
	"ats-score-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestScoreCommandText(t *testing.T) {
	resume := writeFile(t, "resume.pdf", testutil.BuildPDF("Experienced Python and SQL developer"))
	job := writeFile(t, "jd.txt", []byte("Looking for Python, SQL, Tableau"))

	out, err := runCLI(t, "--offline", "score", "--resume", resume, "--job", job)
	require.NoError(t, err)
	assert.Contains(t, out, "Match Score: ")
	assert.Contains(t, out, "Matched Skills:\npython, sql")
	assert.Contains(t, out, "Missing Skills:\ntableau")
}

func TestScoreCommandJSON(t *testing.T) {
	resume := writeFile(t, "resume.pdf", testutil.BuildPDF("Python developer"))

	out, err := runCLI(t, "--offline", "score", "--resume", resume, "--job-text", "Python and Docker", "--json")
	require.NoError(t, err)

	var view report.ScoreView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []string{"python"}, view.MatchedSkills)
	assert.Equal(t, []string{"docker"}, view.MissingSkills)
	assert.Equal(t, "keyword", view.Strategy)
}

func TestScoreCommandErrors(t *testing.T) {
	resume := writeFile(t, "resume.pdf", testutil.BuildPDF("Python developer"))

	_, err := runCLI(t, "--offline", "score", "--resume", resume)
	assert.Error(t, err, "缺少 JD")

	_, err = runCLI(t, "--offline", "score", "--resume", filepath.Join(t.TempDir(), "missing.pdf"), "--job-text", "python")
	assert.Error(t, err)

	empty := writeFile(t, "scan.pdf", testutil.BuildPDF(""))
	_, err = runCLI(t, "--offline", "score", "--resume", empty, "--job-text", "python")
	assert.Error(t, err, "没有文本的 PDF")
}

func TestScoreCommandRequiresModel(t *testing.T) {
	t.Setenv("EMBEDDING_API_KEY", "")
	resume := writeFile(t, "resume.pdf", testutil.BuildPDF("Python developer"))

	_, err := runCLI(t, "score", "--resume", resume, "--job-text", "python")
	assert.Error(t, err, "未配置 api_key 且未指定 --offline")
}

func TestExtractCommand(t *testing.T) {
	resume := writeFile(t, "resume.pdf", testutil.BuildPDF("Senior   Python Developer"))

	out, err := runCLI(t, "extract", "--pdf", resume, "--normalize")
	require.NoError(t, err)
	assert.Equal(t, "senior python developer", strings.TrimSpace(out))

	out, err = runCLI(t, "extract", "--pdf", resume, "--normalize", "--maxlen", "6")
	require.NoError(t, err)
	assert.Equal(t, "senior...", strings.TrimSpace(out))
}

func TestSkillsCommand(t *testing.T) {
	out, err := runCLI(t, "skills", "--text", "Docker, AWS and PYTHON")
	require.NoError(t, err)
	assert.Equal(t, "aws, docker, python\n", out)

	out, err = runCLI(t, "skills", "--text", "gardening")
	require.NoError(t, err)
	assert.Equal(t, "No matched skills found.\n", out)
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCLI(t, "init-config", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "strategy: keyword")

	_, err = runCLI(t, "init-config", "--out", path)
	assert.Error(t, err, "不覆盖已有文件")

	out, err = runCLI(t, "--offline", "score", "--config", path, "--resume", writeFile(t, "r.pdf", testutil.BuildPDF("SQL")), "--job-text", "SQL")
	require.NoError(t, err)
	assert.Contains(t, out, "Matched Skills:\nsql")
}
