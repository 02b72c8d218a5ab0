package manifest

// Manifest is the resolved schema as written by the compiler and loaded by
// the server at startup.
type Manifest struct {
	DataVersion    int               `yaml:"data_version"`
	DefaultClasses map[string]string `yaml:"default_classes,omitempty"`
	Classes        []Class           `yaml:"classes"`
}

// Class lists every visible attribute, inherited ones first. Parents
// precede their children.
type Class struct {
	Name         string   `yaml:"name"`
	ID           uint16   `yaml:"id"`
	Parent       string   `yaml:"parent,omitempty"`
	Final        bool     `yaml:"final"`
	BindsTo      []string `yaml:"binds_to,omitempty"`
	Icon         string   `yaml:"icon,omitempty"`
	ContentTable string   `yaml:"content_table,omitempty"`
	Attrs        []Attr   `yaml:"attrs,omitempty"`
}

type Attr struct {
	Name  string   `yaml:"name"`
	ID    uint16   `yaml:"id"`
	Type  string   `yaml:"type"`
	Flags []string `yaml:"flags,omitempty"`
	Owner string   `yaml:"owner"`
	// Default is the JSON rendering of the default value.
	Default string `yaml:"default"`
}
