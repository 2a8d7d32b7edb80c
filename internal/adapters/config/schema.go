package config

// Lanefile represents the structure of the lane.yaml manifest.
type Lanefile struct {
	Version     string      `yaml:"version"`
	Compiler    string      `yaml:"compiler"`
	Output      string      `yaml:"output"`
	Archive     string      `yaml:"archive"`
	Package     string      `yaml:"package"`
	Target      TargetDTO   `yaml:"target"`
	Kernels     []KernelDTO `yaml:"kernels"`
	Parallelism int         `yaml:"parallelism"`
	TaskSystem  bool        `yaml:"tasksys"`
}

// TargetDTO represents the target configuration block.
type TargetDTO struct {
	Arch           string            `yaml:"arch"`
	Addressing     int               `yaml:"addressing"`
	Variants       []string          `yaml:"variants"`
	Opt            *int              `yaml:"opt"`
	Debug          bool              `yaml:"debug"`
	PIC            *bool             `yaml:"pic"`
	Math           string            `yaml:"math"`
	Defines        map[string]string `yaml:"defines"`
	CPUs           []string          `yaml:"cpus"`
	Includes       []string          `yaml:"includes"`
	ForceAlignment int               `yaml:"forceAlignment"`
	Werror         bool              `yaml:"werror"`
	Woff           bool              `yaml:"woff"`
	WnoPerf        bool              `yaml:"wnoPerf"`
}

// KernelDTO represents one kernel source entry.
type KernelDTO struct {
	Name     string   `yaml:"name"`
	Path     string   `yaml:"path"`
	Includes []string `yaml:"includes"`
}
