package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"site-content-api/internal/store"
	"site-content-api/internal/store/bolt"
	"site-content-api/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		b, err := bolt.Open(filepath.Join(t.TempDir(), "content.db"))
		require.NoError(t, err)
		t.Cleanup(func() { b.Close() })
		return b
	})
}
