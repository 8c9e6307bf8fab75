package cache

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey is the key of a run report for a scene.
	ReportKey(sceneHash string, opts ReportKeyOpts) string

	// ArtifactKey is the key of a rendered report.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string

	// SessionKey is the key of a report stored by the inspector server.
	SessionKey(id string) string
}

// ReportKeyOpts are the run options that change a report.
type ReportKeyOpts struct {
	MaxIterations     int  `json:"max_iterations"`
	ConsistencyChecks bool `json:"consistency_checks"`
	ExtraAssertions   bool `json:"extra_assertions"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Report   ReportKeyOpts `json:"report"`
	Format   string        `json:"format"`
	Geometry bool          `json:"geometry"`
	Clusters bool          `json:"clusters"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ReportKey(sceneHash string, opts ReportKeyOpts) string {
	return hashKey("report", sceneHash, opts)
}

func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

func (DefaultKeyer) SessionKey(id string) string { return "session:" + id }
