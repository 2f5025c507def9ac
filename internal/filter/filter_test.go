package filter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmitBlacklistByNameAndByOpcodeString(t *testing.T) {
	cfg := Config{
		BlacklistEnabled: true,
		Blacklist:        []string{"OP_KeepAlive", "512"},
	}

	assert.False(t, Admit(100, "OP_KeepAlive", 8, cfg))
	assert.False(t, Admit(512, "UNKNOWN_512", 8, cfg))
	assert.True(t, Admit(100, "OP_Chat", 8, cfg))
}

func TestAdmitBlacklistDisabled(t *testing.T) {
	cfg := Config{
		BlacklistEnabled: false,
		Blacklist:        []string{"OP_KeepAlive"},
	}
	assert.True(t, Admit(100, "OP_KeepAlive", 8, cfg))
}

func TestAdmitBlacklistPrecedesInclude(t *testing.T) {
	// blacklisted even though the include list names it explicitly
	cfg := Config{
		BlacklistEnabled: true,
		Blacklist:        []string{"OP_Chat"},
		Include:          []string{"OP_Chat"},
	}
	assert.False(t, Admit(1, "OP_Chat", 8, cfg))
}

func TestAdmitSizeBounds(t *testing.T) {
	cfg := Config{MinSize: 10}
	assert.False(t, Admit(1, "OP_X", 9, cfg))
	assert.True(t, Admit(1, "OP_X", 10, cfg))
	assert.True(t, Admit(1, "OP_X", 100000, cfg)) // MaxSize 0 means unbounded

	cfg = Config{MaxSize: 20}
	assert.True(t, Admit(1, "OP_X", 20, cfg))
	assert.False(t, Admit(1, "OP_X", 21, cfg))
	assert.True(t, Admit(1, "OP_X", 0, cfg)) // MinSize 0 means unbounded
}

func TestAdmitIncludeList(t *testing.T) {
	cfg := Config{Include: []string{"OP_Chat", "33"}}
	assert.True(t, Admit(1, "OP_Chat", 8, cfg))
	assert.True(t, Admit(33, "UNKNOWN_33", 8, cfg))
	assert.False(t, Admit(2, "OP_Other", 8, cfg))
}

func TestAdmitExcludeList(t *testing.T) {
	cfg := Config{Exclude: []string{"OP_Noise"}}
	assert.False(t, Admit(1, "OP_Noise", 8, cfg))
	assert.True(t, Admit(2, "OP_Signal", 8, cfg))
}

func TestStateSnapshotIsolation(t *testing.T) {
	bl := NewBlacklist()
	st := NewState(Config{BlacklistEnabled: true}, bl)

	snap := st.Snapshot()
	st.SetMinSize(50)
	assert.Equal(t, uint32(0), snap.MinSize, "snapshot must not see later mutation")
	assert.Equal(t, uint32(50), st.Snapshot().MinSize)
}

func TestStateToggleBlacklist(t *testing.T) {
	st := NewState(Config{BlacklistEnabled: true}, NewBlacklist())
	assert.False(t, st.ToggleBlacklist())
	assert.True(t, st.ToggleBlacklist())
}

func TestBlacklistLoadInstallsAndPersistsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.yaml")

	bl := NewBlacklist()
	bl.Load(path)
	require.Len(t, bl.Entries(), len(defaultBlacklist))

	// round-trips through the persisted file
	bl2 := NewBlacklist()
	bl2.Load(path)
	assert.Equal(t, bl.Entries(), bl2.Entries())
}

func TestBlacklistAddRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.yaml")
	bl := NewBlacklist()
	bl.Load(path)

	require.NoError(t, bl.Add("OP_Custom"))
	assert.Error(t, bl.Add("OP_Custom"), "duplicate add is reported")
	assert.Contains(t, bl.Entries(), "OP_Custom")

	require.NoError(t, bl.Remove("OP_Custom"))
	assert.NotContains(t, bl.Entries(), "OP_Custom")
	assert.Error(t, bl.Remove("OP_Custom"))

	// mutations persisted
	bl2 := NewBlacklist()
	bl2.Load(path)
	assert.NotContains(t, bl2.Entries(), "OP_Custom")
}
