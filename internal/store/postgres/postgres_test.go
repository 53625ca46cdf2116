package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"site-content-api/internal/store"
	"site-content-api/internal/store/postgres"
	"site-content-api/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	_ = godotenv.Load("../../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	b, err := postgres.Open(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	storetest.Run(t, func(t *testing.T) store.Backend { return b })
}
