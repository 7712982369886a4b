package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStorageInfo(t *testing.T) {
	root := t.TempDir()

	info, err := GetStorageInfo(root)
	require.NoError(t, err)

	assert.Equal(t, root, info.Root)
	assert.NotZero(t, info.Total)
	assert.NotEmpty(t, info.TotalHuman)
	assert.LessOrEqual(t, info.Used, info.Total)
}

func TestGetStorageInfo_Missing(t *testing.T) {
	_, err := GetStorageInfo(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReporter_CachesStorage(t *testing.T) {
	r := NewReporter(t.TempDir())
	defer r.Close()

	first, err := r.Storage()
	require.NoError(t, err)
	second, err := r.Storage()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestUptimeLabel(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "5 minutes", uptimeLabel(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2 hours", uptimeLabel(now.Add(-2*time.Hour), now))
	assert.Equal(t, "now", uptimeLabel(now, now))
}

func TestMountFor(t *testing.T) {
	parts := []disk.PartitionStat{
		{Device: "/dev/root", Mountpoint: "/"},
		{Device: "/dev/mmcblk1p1", Mountpoint: "/media/sd"},
		{Device: "/dev/sda1", Mountpoint: "/media/sdcard"},
	}

	mount, ok := mountFor(parts, "/media/sdcard/Movies")
	require.True(t, ok)
	assert.Equal(t, "/dev/sda1", mount.Device)

	mount, ok = mountFor(parts, "/media/sd")
	require.True(t, ok)
	assert.Equal(t, "/dev/mmcblk1p1", mount.Device)

	mount, ok = mountFor(parts, "/home/me/videos")
	require.True(t, ok)
	assert.Equal(t, "/dev/root", mount.Device)

	_, ok = mountFor(parts[1:], "/home/me/videos")
	assert.False(t, ok)
}

func TestReporter_Device(t *testing.T) {
	r := NewReporter(t.TempDir())
	defer r.Close()

	info, err := r.Device()
	require.NoError(t, err)
	assert.NotEmpty(t, info.UptimeHuman)

	again, err := r.Device()
	require.NoError(t, err)
	assert.Same(t, info, again)
}
