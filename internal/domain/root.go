package domain

// ProjectRoot is one open top-level project directory
type ProjectRoot struct {
	Name string `yaml:"name" json:"name"` // Stable display name
	Path string `yaml:"path" json:"path"` // Absolute base path
}
