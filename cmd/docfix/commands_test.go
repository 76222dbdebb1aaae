package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<h1>Entities</h1>
<pre><code>class Entity { public: uint32_t id; };</code></pre>
<pre><code>function f() local x = 1 end</code></pre>
<pre><code class="language-glsl">vec3 p;</code></pre>
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DOCFIX_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DOCFIX_STORAGE__DSN", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tutorial.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))
	return path
}

func TestClassifyText(t *testing.T) {
	out, err := run(t, "", "classify", "--text", "vec3 pos; gl_Position = vec4(pos,1.0);")
	require.NoError(t, err)
	assert.Equal(t, "language-glsl\n", out)
}

func TestClassifyStdin(t *testing.T) {
	out, err := run(t, "function f() local x = 1 end", "classify")
	require.NoError(t, err)
	assert.Equal(t, "language-lua\n", out)
}

func TestClassifyExplain(t *testing.T) {
	out, err := run(t, "", "classify", "--explain", "--text", "class Entity { public: uint32_t id; };")
	require.NoError(t, err)
	assert.Contains(t, out, "label: language-cpp")
	assert.Contains(t, out, "rule:  structured-score")
	assert.Contains(t, out, "cpp: ")
}

func TestClassifyExplainOverride(t *testing.T) {
	out, err := run(t, "", "classify", "-e", "-t", "├── src/\n│   └── main")
	require.NoError(t, err)
	assert.Equal(t, "label: language-plaintext\nrule:  box-drawing\n", out)
}

func TestRewrite(t *testing.T) {
	path := writePage(t)

	out, err := run(t, "", "rewrite", path)
	require.NoError(t, err)
	assert.Contains(t, out, "labeled 2, skipped 1")
	assert.Contains(t, out, "Code blocks without language class: 0")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<pre><code class="language-cpp">class Entity`)
	assert.Contains(t, string(data), `<pre><code class="language-lua">function f()`)
}

func TestRewriteDryRun(t *testing.T) {
	path := writePage(t)

	out, err := run(t, "", "rewrite", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(dry run)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, page, string(data))
}

func TestRewriteRequiresFiles(t *testing.T) {
	_, err := run(t, "", "rewrite")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	path := writePage(t)

	out, err := run(t, "", "verify", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 code blocks without language class")
	assert.Contains(t, out, "glsl: 1")

	_, err = run(t, "", "rewrite", path)
	require.NoError(t, err)

	out, err = run(t, "", "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "cpp: 1")
	assert.Contains(t, out, "lua: 1")
}
