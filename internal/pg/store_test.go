package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"paramforge/internal/gamedata"
	"paramforge/internal/param"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("paramforge"),
		postgres.WithUsername("paramforge"),
		postgres.WithPassword("paramforge"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func TestStoreRoundTrip(t *testing.T) {
	url := startPostgres(t)
	ctx := context.Background()

	db, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, err := gamedata.Dispatch(nil)
	require.NoError(t, err)
	st := NewStore(db, d, nil)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx), "migration is idempotent")

	b, err := d.New(gamedata.SwordClassID)
	require.NoError(t, err)
	require.NoError(t, b.Table().Set("damage", param.Int(42)))
	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.Save(ctx, "01SWORD", 1, now, b))

	require.NoError(t, b.Table().Set("damage", param.Int(43)))
	require.NoError(t, st.Save(ctx, "01SWORD", 2, now, b))

	var damage int32
	require.NoError(t, db.QueryRowContext(ctx, `select "damage" from "paramforge"."swords" where "id" = $1`, "01SWORD").Scan(&damage))
	assert.Equal(t, int32(43), damage)

	p, err := d.New(gamedata.PlayerClassID)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, "01PLAYER", 1, now, p))

	rows, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byID := map[string]Row{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.Equal(t, int64(2), byID["01SWORD"].Version)
	assert.True(t, b.Equal(byID["01SWORD"].Box))
	assert.True(t, p.Equal(byID["01PLAYER"].Box))

	require.NoError(t, st.Delete(ctx, gamedata.SwordClassID, "01SWORD"))
	rows, err = st.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
