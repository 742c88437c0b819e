package zman_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/zman"
	"github.com/mirpeset/mirpeset/storage/inmem"
)

func testClock() *core.FixedClock {
	return &core.FixedClock{Time: time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewZmanStore()
	svc := zman.NewService(store, testClock())

	z, err := svc.Create(ctx, zman.NewZman{
		Date:  day(2026, 1, 16),
		Time:  "16:30",
		Label: "הדלקת נרות",
		Type:  zman.TypeCandleLighting,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, z.ID)
	assert.False(t, z.CreatedAt.IsZero())

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_BulkInsert_dedup(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewZmanStore(zman.Zman{
		ID: "a", Date: day(2026, 1, 16), Time: "16:30", Type: zman.TypeCandleLighting,
	})
	svc := zman.NewService(store, testClock())

	res, err := svc.BulkInsert(ctx, []zman.NewZman{
		// duplicate of the stored zman
		{Date: day(2026, 1, 16), Time: "16:30", Type: zman.TypeCandleLighting},
		// same day and time, different type: not a duplicate
		{Date: day(2026, 1, 16), Time: "16:30", Type: zman.TypeSunset},
		{Date: day(2026, 1, 23), Time: "16:40", Type: zman.TypeCandleLighting},
		// duplicate within the batch itself
		{Date: day(2026, 1, 23), Time: "16:40", Type: zman.TypeCandleLighting},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Skipped)

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 1, store.Saves)
}

func TestService_BulkInsert_allDuplicatesNoSave(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewZmanStore(zman.Zman{
		ID: "a", Date: day(2026, 1, 16), Time: "16:30", Type: zman.TypeCandleLighting,
	})
	svc := zman.NewService(store, testClock())

	res, err := svc.BulkInsert(ctx, []zman.NewZman{
		{Date: day(2026, 1, 16), Time: "16:30", Type: zman.TypeCandleLighting},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, store.Saves)
}
