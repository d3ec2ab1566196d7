package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCallPreconditionReturnsHookResult(t *testing.T) {
	path := writeScript(t, `
function can_start_Attack(ctx)
  return ctx.hp_percent > 50 and not ctx.in_combat
end
`)
	mgr, err := Load(path, nil)
	require.NoError(t, err)
	defer mgr.Close()

	result, ok := mgr.CallPrecondition("can_start_Attack", Snapshot{HPPercent: 80, InCombat: false})
	assert.True(t, ok)
	assert.True(t, result)

	result, ok = mgr.CallPrecondition("can_start_Attack", Snapshot{HPPercent: 80, InCombat: true})
	assert.True(t, ok)
	assert.False(t, result)
}

func TestCallPreconditionUndefinedHookReturnsNotOK(t *testing.T) {
	path := writeScript(t, `function can_start_Heal(ctx) return true end`)
	mgr, err := Load(path, nil)
	require.NoError(t, err)
	defer mgr.Close()

	_, ok := mgr.CallPrecondition("can_start_Attack", Snapshot{})
	assert.False(t, ok, "a hook the script never defines must report not-ok, not a default")
}

func TestCallPreconditionRuntimeErrorIsNotOK(t *testing.T) {
	path := writeScript(t, `function can_start_Attack(ctx) error("boom") end`)
	mgr, err := Load(path, nil)
	require.NoError(t, err)
	defer mgr.Close()

	result, ok := mgr.CallPrecondition("can_start_Attack", Snapshot{})
	assert.False(t, ok)
	assert.False(t, result)
}

func TestCallPreconditionNonBooleanReturnIsNotOK(t *testing.T) {
	path := writeScript(t, `function can_start_Attack(ctx) return "yes" end`)
	mgr, err := Load(path, nil)
	require.NoError(t, err)
	defer mgr.Close()

	_, ok := mgr.CallPrecondition("can_start_Attack", Snapshot{})
	assert.False(t, ok)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lua"), nil)
	assert.Error(t, err)
}
