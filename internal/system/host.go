package system

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
)

// GetDeviceInfo identifies the host and the mount the media root lives on
func GetDeviceInfo(root string) (*DeviceInfo, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	boot := time.Unix(int64(info.BootTime), 0)
	device := &DeviceInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelArch:      info.KernelArch,
		BootTime:        boot.UTC(),
		Uptime:          info.Uptime,
		UptimeHuman:     uptimeLabel(boot, time.Now()),
	}

	// Partitions may be unreadable in containers; the host part still stands
	if parts, err := disk.Partitions(false); err == nil {
		if mount, ok := mountFor(parts, root); ok {
			device.MediaDevice = mount.Device
			device.MediaMount = mount.Mountpoint
		}
	}

	return device, nil
}

// mountFor picks the partition with the deepest mountpoint containing root
func mountFor(parts []disk.PartitionStat, root string) (disk.PartitionStat, bool) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return disk.PartitionStat{}, false
	}

	var best disk.PartitionStat
	found := false
	for _, p := range parts {
		if !within(p.Mountpoint, abs) {
			continue
		}
		if !found || len(p.Mountpoint) > len(best.Mountpoint) {
			best, found = p, true
		}
	}
	return best, found
}

func within(mount, path string) bool {
	if mount == "" {
		return false
	}
	if mount == string(filepath.Separator) {
		return true
	}
	return path == mount || strings.HasPrefix(path, mount+string(filepath.Separator))
}

func uptimeLabel(boot, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(boot, now, "", ""))
}
