package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfix/internal/classifier"
	"docfix/internal/config"
	"docfix/internal/domain"
	"docfix/internal/notifier"
	"docfix/internal/queue"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
)

const page = `<html><body>
<div class="comparison-box">
<pre><code>class Entity { public: uint32_t id; };</code></pre>
<pre><code>function f() local x = 1 end</code></pre>
</div>
<pre><code class="language-glsl">vec3 pos;</code></pre>
</body></html>`

var rewriterConfig = config.RewriterConfig{
	DecodeEntities: true,
	Substitutions: []config.Substitution{
		{From: `<div class="comparison-box">`, To: `<div class="comparison-box-vertical">`},
	},
}

func newProcessor(repo storage.RunRepository, dryRun bool) *Processor {
	rw := rewriter.New(classifier.NewHeuristic(), rewriterConfig)
	return NewProcessor(rw, repo, rewriterConfig, config.ProcessorConfig{Concurrency: 2, DryRun: dryRun})
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessRewritesFile(t *testing.T) {
	repo := storage.NewMemory()
	path := writeDoc(t, t.TempDir(), "tutorial.html", page)

	res, err := newProcessor(repo, false).Process(context.Background(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `<pre><code class="language-cpp">class Entity`)
	assert.Contains(t, out, `<pre><code class="language-lua">function f()`)
	assert.Contains(t, out, `<div class="comparison-box-vertical">`)

	assert.Equal(t, 2, res.Run.Labeled)
	assert.Equal(t, 1, res.Run.Skipped)
	assert.Equal(t, 0, res.Run.Unlabeled)
	assert.Equal(t, 1, res.Run.Substitutions)
	assert.Equal(t, checksum(data), res.Run.Checksum)
	assert.Equal(t, 1, res.Report.Distribution["language-glsl"])

	saved, err := repo.FindByID(context.Background(), res.Run.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, path, saved.Path)
}

func TestProcessTwiceLeavesFileUnchanged(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "tutorial.html", page)
	p := newProcessor(storage.NewMemory(), false)

	first, err := p.Process(context.Background(), path)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first.Run.Checksum, second.Run.Checksum)
	assert.Zero(t, second.Run.Labeled)
	assert.Equal(t, 3, second.Run.Skipped)
}

func TestProcessDryRun(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "tutorial.html", page)

	res, err := newProcessor(nil, true).Process(context.Background(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, page, string(data))
	assert.True(t, res.Run.DryRun)
	assert.Equal(t, 2, res.Run.Labeled)
}

func TestProcessMissingFile(t *testing.T) {
	_, err := newProcessor(nil, false).Process(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestProcessAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeDoc(t, dir, "a.html", page),
		writeDoc(t, dir, "b.html", "<pre><code>hello world</code></pre>"),
		writeDoc(t, dir, "c.html", "<p>nothing</p>"),
	}

	results, err := newProcessor(storage.NewMemory(), false).ProcessAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, paths[i], r.Run.Path)
	}
	assert.Equal(t, 1, results[1].Run.Distribution["language-plaintext"])
	assert.Zero(t, results[2].Run.Labeled)
}

func TestProcessAllReportsFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeDoc(t, dir, "a.html", page),
		filepath.Join(dir, "missing.html"),
	}

	_, err := newProcessor(nil, false).ProcessAll(context.Background(), paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.html")
}

type fakeTracker struct {
	mu        sync.Mutex
	documents []string
	checksums map[string]string
}

func newFakeTracker(docs ...string) *fakeTracker {
	return &fakeTracker{documents: docs, checksums: make(map[string]string)}
}

func (f *fakeTracker) GetDocuments(context.Context) ([]string, error) {
	return f.documents, nil
}

func (f *fakeTracker) GetChecksum(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checksums[path], nil
}

func (f *fakeTracker) SetChecksum(_ context.Context, path, sum string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checksums[path] = sum
	return nil
}

func TestWatcherQueuesChangedDocuments(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.html", page)
	b := writeDoc(t, dir, "b.html", "<p>b</p>")

	tracker := newFakeTracker(b, a)
	q := queue.NewMemory(10)
	w := NewWatcher(tracker, q, config.WatcherConfig{Interval: time.Hour, Documents: []string{a}})

	ctx := context.Background()
	w.scanAll(ctx)
	assert.Equal(t, 2, q.Len())

	w.scanAll(ctx)
	assert.Equal(t, 2, q.Len())

	require.NoError(t, os.WriteFile(b, []byte("<p>changed</p>"), 0o644))
	w.scanAll(ctx)
	assert.Equal(t, 3, q.Len())
}

func TestWatcherPathsDeduplicates(t *testing.T) {
	w := NewWatcher(newFakeTracker("b", "a"), nil, config.WatcherConfig{Documents: []string{"a", "c"}})

	paths, err := w.paths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, paths)
}

type recordingBroadcaster struct {
	msgs []string
}

func (r *recordingBroadcaster) Broadcast(msg string) {
	r.msgs = append(r.msgs, msg)
}

func TestConsumerHandleJob(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "tutorial.html", page)
	tracker := newFakeTracker()
	b := &recordingBroadcaster{}
	c := NewConsumer(queue.NewMemory(1), newProcessor(storage.NewMemory(), false), tracker, b)

	err := c.handleJob(context.Background(), domain.Job{ID: "j1", Path: path, Source: domain.SourceWatcher})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, checksum(data), tracker.checksums[path])

	require.Len(t, b.msgs, 1)
	assert.True(t, strings.Contains(b.msgs[0], "language-cpp: 1"))
	assert.Contains(t, b.msgs[0], "tutorial.html")
}

func TestConsumerHandleJobError(t *testing.T) {
	b := &recordingBroadcaster{}
	c := NewConsumer(queue.NewMemory(1), newProcessor(nil, false), nil, b)

	err := c.handleJob(context.Background(), domain.Job{ID: "j1", Path: filepath.Join(t.TempDir(), "nope.html")})
	assert.Error(t, err)
	assert.Empty(t, b.msgs)
}

func TestConsumerStartDrainsQueue(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "tutorial.html", page)
	q := queue.NewMemory(1)
	repo := storage.NewMemory()
	c := NewConsumer(q, newProcessor(repo, false), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.NoError(t, q.Publish(ctx, domain.Job{ID: "j1", Path: path}))
	require.Eventually(t, func() bool {
		stats, _ := repo.GetStats(context.Background())
		return stats.Runs == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

type recordingNotifier struct {
	sent []notifier.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notifier.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func TestConsumerNotifiesOnUnlabeledBlocks(t *testing.T) {
	dir := t.TempDir()
	clean := writeDoc(t, dir, "clean.html", page)
	// the rewriter only matches a bare <pre><code>, so this block stays unlabeled
	stubborn := writeDoc(t, dir, "stubborn.html", `<pre id="a"><code>int x;</code></pre>`)

	n := &recordingNotifier{}
	c := NewConsumer(queue.NewMemory(1), newProcessor(nil, false), nil, nil).WithNotifier(n)

	require.NoError(t, c.handleJob(context.Background(), domain.Job{Path: clean}))
	assert.Empty(t, n.sent)

	require.NoError(t, c.handleJob(context.Background(), domain.Job{Path: stubborn}))
	require.Len(t, n.sent, 1)
	assert.Equal(t, stubborn, n.sent[0].Run.Path)
	assert.Equal(t, 1, n.sent[0].Report.Unlabeled)
}
