package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meysamhadeli/kotpad/syntax"
)

func TestWatchRules_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [fun]\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *syntax.RuleSet, 4)
	require.NoError(t, WatchRules(ctx, path, func(rules *syntax.RuleSet) {
		reloaded <- rules
	}))

	require.NoError(t, os.WriteFile(path, []byte("keywords: [val]\n"), 0644))

	select {
	case rules := <-reloaded:
		require.NotNil(t, rules)
		assert.True(t, rules.IsKeyword("val"))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for rules reload")
	}
}

func TestWatchRules_BrokenFileReloadsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [fun]\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *syntax.RuleSet, 4)
	require.NoError(t, WatchRules(ctx, path, func(rules *syntax.RuleSet) {
		reloaded <- rules
	}))

	require.NoError(t, os.WriteFile(path, []byte(":\n  - [unclosed"), 0644))

	select {
	case rules := <-reloaded:
		assert.Nil(t, rules, "broken rules degrade to plain highlighting")
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for rules reload")
	}
}

func TestWatchRules_RequiresPath(t *testing.T) {
	assert.Error(t, WatchRules(context.Background(), "", nil))
}

func TestWatchRules_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [fun]\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *syntax.RuleSet, 4)
	require.NoError(t, WatchRules(ctx, path, func(rules *syntax.RuleSet) {
		reloaded <- rules
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-reloaded:
		t.Fatal("sibling file write must not trigger a reload")
	case <-time.After(200 * time.Millisecond):
	}
}
