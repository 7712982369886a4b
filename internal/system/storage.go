package system

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/ngenohkevin/reeldeck/internal/cache"
)

// StorageTTL is how long a storage reading is reused
const StorageTTL = 5 * time.Second

const (
	keyStorage = "storage"
	keyDevice  = "device"
)

// Reporter reads storage and device info, caching each for a few seconds
type Reporter struct {
	root    string
	storage *cache.Cache[*StorageInfo]
	device  *cache.Cache[*DeviceInfo]
}

// NewReporter creates a reporter for the filesystem holding root
func NewReporter(root string) *Reporter {
	return &Reporter{
		root:    root,
		storage: cache.New[*StorageInfo](StorageTTL),
		device:  cache.New[*DeviceInfo](time.Minute),
	}
}

// Storage returns usage of the filesystem holding the media root
func (r *Reporter) Storage() (*StorageInfo, error) {
	return r.storage.GetOrSet(keyStorage, func() (*StorageInfo, error) {
		return GetStorageInfo(r.root)
	})
}

// Device returns host identification and the mount holding the media root
func (r *Reporter) Device() (*DeviceInfo, error) {
	return r.device.GetOrSet(keyDevice, func() (*DeviceInfo, error) {
		return GetDeviceInfo(r.root)
	})
}

// Close stops the cache sweepers
func (r *Reporter) Close() {
	r.storage.Close()
	r.device.Close()
}

// GetStorageInfo reads usage of the filesystem holding path
func GetStorageInfo(path string) (*StorageInfo, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage for %s: %w", path, err)
	}

	return &StorageInfo{
		Root:        path,
		Fstype:      usage.Fstype,
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
		TotalHuman:  humanize.IBytes(usage.Total),
		UsedHuman:   humanize.IBytes(usage.Used),
		FreeHuman:   humanize.IBytes(usage.Free),
		Timestamp:   time.Now().UTC(),
	}, nil
}
