package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStore_Contract(t *testing.T) {
	storeContract(t, NewDirStore(t.TempDir()))
}

func TestDirStore_Layout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	store := NewDirStore(root)
	assert.Equal(t, root, store.Root())

	require.NoError(t, store.Save("sess", "best_draft.md", []byte("# Title")))

	data, err := os.ReadFile(filepath.Join(root, "sess", "best_draft.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Title", string(data))
	assert.Equal(t, filepath.Join(root, "sess", "best_draft.md"), store.Path("sess", "best_draft.md"))

	entries, err := os.ReadDir(filepath.Join(root, "sess"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}
