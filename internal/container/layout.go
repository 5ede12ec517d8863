// Package container packs, unpacks, and validates .stella archives: ZIP
// containers with a deterministic member order, a typed manifest, one
// descriptor/render/collision triad per level, and an optional SHA-256
// checksum manifest.
package container

// Fixed archive-relative paths. Archive paths are always forward-slash
// separated regardless of host OS.
const (
	ManifestPath = "manifest.json"
	ChecksumPath = "checksums.sha256"
)

// LevelDescriptorPath returns the archive path of a level's descriptor.
func LevelDescriptorPath(id string) string {
	return "levels/" + id + "/level.json"
}

// LevelRenderPath returns the archive path of a level's render payload.
func LevelRenderPath(id string) string {
	return "levels/" + id + "/render.glb"
}

// LevelCollisionPath returns the archive path of a level's collision payload.
func LevelCollisionPath(id string) string {
	return "levels/" + id + "/collision.rlevox"
}

// RequiredLevelPaths lists the triad every declared level must carry.
func RequiredLevelPaths(id string) []string {
	return []string{
		LevelDescriptorPath(id),
		LevelRenderPath(id),
		LevelCollisionPath(id),
	}
}
