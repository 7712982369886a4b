package system

import "time"

// DeviceInfo identifies the machine serving the library
type DeviceInfo struct {
	Hostname        string    `json:"hostname"`
	OS              string    `json:"os"`
	Platform        string    `json:"platform"`
	PlatformVersion string    `json:"platform_version"`
	KernelArch      string    `json:"kernel_arch"`
	BootTime        time.Time `json:"boot_time"`
	Uptime          uint64    `json:"uptime"`
	UptimeHuman     string    `json:"uptime_human"`
	MediaDevice     string    `json:"media_device,omitempty"`
	MediaMount      string    `json:"media_mount,omitempty"`
}

// StorageInfo describes the filesystem holding the media root
type StorageInfo struct {
	Root        string    `json:"root"`
	Fstype      string    `json:"fstype"`
	Total       uint64    `json:"total"`
	Used        uint64    `json:"used"`
	Free        uint64    `json:"free"`
	UsedPercent float64   `json:"used_percent"`
	TotalHuman  string    `json:"total_human"`
	UsedHuman   string    `json:"used_human"`
	FreeHuman   string    `json:"free_human"`
	Timestamp   time.Time `json:"timestamp"`
}
