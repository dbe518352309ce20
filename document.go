package settings

// Known section names. The set is closed: every other key found in a
// document is carried through writes unmodified for forward compatibility.
const (
	SectionDesign        = "design"
	SectionSettings      = "settings"
	SectionContent       = "content"
	SectionIntegrations  = "integrations"
	SectionSecurity      = "security"
	SectionFeatures      = "features"
	SectionNotifications = "notifications"
	SectionPages         = "pages"
)

// KnownSections lists the closed section set in display order.
var KnownSections = []string{
	SectionDesign,
	SectionSettings,
	SectionContent,
	SectionIntegrations,
	SectionSecurity,
	SectionFeatures,
	SectionNotifications,
	SectionPages,
}

// IsKnownSection reports whether name belongs to the closed section set.
func IsKnownSection(name string) bool {
	for _, section := range KnownSections {
		if section == name {
			return true
		}
	}
	return false
}

// Document is the configuration document: a mapping from section name to an
// open JSON-like payload. The internal shape of each payload is owned by the
// validator, not by this package.
type Document map[string]map[string]any

// NewDocument returns an empty document ready for population.
func NewDocument() Document {
	return Document{}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for section, payload := range d {
		out[section] = clonePayload(payload)
	}
	return out
}

// Section returns a deep copy of the named section payload, or nil when the
// section is absent.
func (d Document) Section(name string) map[string]any {
	if d == nil {
		return nil
	}
	payload, ok := d[name]
	if !ok {
		return nil
	}
	return clonePayload(payload)
}

// Sections returns the section names present in the document, known or not.
func (d Document) Sections() []string {
	if len(d) == 0 {
		return nil
	}
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}

// Equal reports deep equality between two documents.
func (d Document) Equal(other Document) bool {
	if len(d) != len(other) {
		return false
	}
	for section, payload := range d {
		otherPayload, ok := other[section]
		if !ok || !payloadsEqual(payload, otherPayload) {
			return false
		}
	}
	return true
}

func payloadsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for key, va := range a {
		vb, ok := b[key]
		if !ok || !valuesEqual(va, vb) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		return ok && payloadsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !valuesEqual(va[i], vb[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
