package cache

// Keyer builds cache keys.
type Keyer interface {
	// PlacementKey identifies the layout produced from one netlist.
	PlacementKey(inputHash string, opts PlacementKeyOpts) string
	// ArtifactKey identifies a rendered floorplan of one layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// PlacementKeyOpts are the engine options that affect the placement.
type PlacementKeyOpts struct {
	Candidates int    `json:"candidates"`
	Threshold  int    `json:"threshold"`
	Mode       string `json:"mode"`
	Exhaustion string `json:"exhaustion"`
	MaxRounds  int    `json:"max_rounds,omitempty"`
}

// ArtifactKeyOpts are the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Scale       float64 `json:"scale"`
	Edges       bool    `json:"edges"`
	Coordinates bool    `json:"coordinates"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlacementKey implements Keyer.
func (DefaultKeyer) PlacementKey(inputHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
