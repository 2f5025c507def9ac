package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePicksHighestVersion(t *testing.T) {
	s := NewStore()
	s.Register("OP_SpawnNPC", 1, Compile("uint32 gameId"))
	s.Register("OP_SpawnNPC", 3, Compile("uint32 gameId\nvec3 loc"))
	s.Register("OP_SpawnNPC", 2, Compile("uint16 gameId"))

	fields := s.Resolve("OP_SpawnNPC")
	require.Len(t, fields, 2)
	assert.Equal(t, "loc", fields[1].Name)
}

func TestResolveUnknownNameReturnsNil(t *testing.T) {
	assert.Nil(t, NewStore().Resolve("OP_Nothing"))
}

func TestRegisterSameVersionOverwrites(t *testing.T) {
	s := NewStore()
	s.Register("OP_Chat", 1, Compile("uint32 channel"))
	s.Register("OP_Chat", 1, Compile("string text"))

	fields := s.Resolve("OP_Chat")
	require.Len(t, fields, 1)
	assert.Equal(t, "text", fields[0].Name)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("OP_SpawnNPC.1.txt", "uint32 gameId")
	write("OP_SpawnNPC.2.txt", "uint32 gameId\nbool aggressive")
	write("OP_Move.txt", "vec3 loc") // no version token, defaults to 1
	write("OP_Bad.abc.txt", "uint8 flag")

	s := NewStore()
	s.Load(dir)

	assert.Len(t, s.Resolve("OP_SpawnNPC"), 2)
	assert.Len(t, s.Resolve("OP_Move"), 1)
	// unparsable version falls back to 1, the file still registers
	assert.Len(t, s.Resolve("OP_Bad"), 1)
	assert.Equal(t, []string{"OP_Bad", "OP_Move", "OP_SpawnNPC"}, s.Names())
}

func TestLoadMissingDirectoryLeavesStoreEmpty(t *testing.T) {
	s := NewStore()
	s.Load(filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, s.Names())
}

func TestSplitSchemaName(t *testing.T) {
	cases := []struct {
		file    string
		name    string
		version int
	}{
		{"OP_SpawnNPC.3.txt", "OP_SpawnNPC", 3},
		{"OP_SpawnNPC.txt", "OP_SpawnNPC", 1},
		{"OP_SpawnNPC", "OP_SpawnNPC", 1},
		{"OP_SpawnNPC.x.txt", "OP_SpawnNPC", 1},
		{"OP_SpawnNPC.0.txt", "OP_SpawnNPC", 1},
	}
	for _, tc := range cases {
		name, version := splitSchemaName(tc.file)
		assert.Equal(t, tc.name, name, tc.file)
		assert.Equal(t, tc.version, version, tc.file)
	}
}
