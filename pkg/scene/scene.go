package scene

import (
	"github.com/df07/skean-raytracer/pkg/geometry"
)

// Scene contains a world and the metadata of the file it was read from
type Scene struct {
	Version    string         // Format version the scene was stored with
	World      geometry.World // Objects in the scene
	Provenance *Provenance    // How the scene was made (generated scenes only)
}

// Provenance records how a generated scene was produced
type Provenance struct {
	AutoGenerated bool             `json:"auto_generated"`
	Tool          string           `json:"tool"`
	Revision      string           `json:"git_commit_hash,omitempty"`
	Modified      bool             `json:"git_dirty_tree_not_considering_untracked_files,omitempty"` // Untracked files do not count
	Options       *GenerateOptions `json:"options,omitempty"`
}

// NewScene wraps a world in a scene at the current format version
func NewScene(world geometry.World) *Scene {
	return &Scene{
		Version: FormatVersion,
		World:   world,
	}
}

// GetPrimitiveCount returns the number of top-level objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.World)
}
