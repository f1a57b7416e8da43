package resource

// LiveUpdateStep is one step of a host live-update sequence. Steps are
// opaque to command synthesis and reach the host exactly as declared.
// Exactly one of Sync or Run is set.
type LiveUpdateStep struct {
	Sync *SyncStep `json:"sync,omitempty" yaml:"sync,omitempty"`
	Run  *RunStep  `json:"run,omitempty" yaml:"run,omitempty"`
}

// SyncStep copies a local path into the running container.
type SyncStep struct {
	LocalPath     string `json:"localPath" yaml:"localPath"`
	ContainerPath string `json:"containerPath" yaml:"containerPath"`
}

// RunStep executes a command inside the running container, optionally
// only when one of the trigger paths changed.
type RunStep struct {
	Command  string   `json:"command" yaml:"command"`
	Triggers []string `json:"triggers,omitempty" yaml:"triggers,omitempty"`
}
