package serializer

const (
	// ConfigMapURIScheme prefixes output destinations stored as
	// Kubernetes ConfigMaps, cm://namespace/name.
	ConfigMapURIScheme = "cm://"

	// StdoutURI is the destination selecting stdout.
	StdoutURI = "-"
)
