package kb

// MotifDef is a motif as authored: an identifier, a display name and the
// literal phrases that express it.
type MotifDef struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// ThemeDef is a theme as authored. Motifs and Subthemes hold identifiers of
// other definitions.
type ThemeDef struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Motifs    []string `json:"motifs"`
	Subthemes []string `json:"subthemes"`
}

// Definitions is the raw input to Build.
type Definitions struct {
	Motifs []MotifDef `json:"motifs"`
	Themes []ThemeDef `json:"themes"`
}

// ImplicitMotif builds a motif whose only feature is its own name, for
// libraries that reference a motif they never define.
func ImplicitMotif(name string) MotifDef {
	return MotifDef{ID: name, Name: name, Features: []string{name}}
}

// EnsureMotif appends an implicit motif named name unless a motif with that
// canonical name or id is already defined. It reports whether it added one.
func (d *Definitions) EnsureMotif(name string) bool {
	canonical := NormalizeMotifName(name)
	for _, m := range d.Motifs {
		if m.ID == name || NormalizeMotifName(m.Name) == canonical {
			return false
		}
	}
	d.Motifs = append(d.Motifs, ImplicitMotif(canonical))
	return true
}

// Motif is a registered motif. Read-only after Build.
type Motif struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// Theme is a registered theme. Motifs and Subthemes hold canonical names;
// SubthemeIDs keeps the raw identifiers as authored.
type Theme struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Motifs      []string `json:"motifs"`
	SubthemeIDs []string `json:"subthemeIds"`
	Subthemes   []string `json:"subthemes"`
}

// RefKind tells motif and theme registries apart in diagnostics.
type RefKind string

const (
	KindMotif RefKind = "motif"
	KindTheme RefKind = "theme"
)

// Collision records two definitions normalizing to the same canonical name.
// The incoming definition replaced the existing one.
type Collision struct {
	Kind      RefKind `json:"kind"`
	Canonical string  `json:"canonical"`
	Existing  string  `json:"existing"` // raw name of the replaced definition
	Incoming  string  `json:"incoming"`
}

// Unresolved records a reference that named no registered definition.
type Unresolved struct {
	Kind  RefKind `json:"kind"`  // kind of the missing target
	Owner string  `json:"owner"` // theme holding the reference
	Ref   string  `json:"ref"`
}
