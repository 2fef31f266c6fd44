package config

// Defaults are the VM sizing values used for every key the operator left
// out of the normalized configuration.
type Defaults struct {
	// OS identifier to deploy when none is given; empty means "use the
	// version's default distro".
	OS string `mapstructure:"os"`
	// CPUs is the number of virtual CPUs per VM.
	CPUs int `mapstructure:"cpus"`
	// RAM per VM, in gigabytes.
	RAM int `mapstructure:"ram"`
	// DiskSize of each storage disk, in gigabytes.
	DiskSize int `mapstructure:"disk_size"`
	// NumDisks is the number of storage disks on OSD nodes.
	NumDisks int `mapstructure:"num_disks"`
}

// Libvirt holds the connection defaults for the libvirt provider.
type Libvirt struct {
	Host        string `mapstructure:"host"`
	User        string `mapstructure:"user"`
	StoragePool string `mapstructure:"storage_pool"`
}

type Config struct {
	// WorkPath is the directory deployments are stored under.
	WorkPath string   `mapstructure:"work_path"`
	Defaults Defaults `mapstructure:"defaults"`
	Libvirt  Libvirt  `mapstructure:"libvirt"`
}
