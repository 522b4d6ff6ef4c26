// Package document models one cataloged PDF: its identity parsed from the
// filename, the descriptive fields an operator fills in, and the cross-reference
// results against the other documents of the catalog.
package document

// Document is one cataloged file. Identity fields are set once at creation and
// never recomputed; descriptive fields start unset and are filled by an operator.
type Document struct {
	Dir      string `json:"pdfdir"`
	Filename string `json:"filename"`
	Path     string `json:"fullpath"`
	Name     string `json:"name"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Pages    int    `json:"pages"`
	Free     bool   `json:"free"`

	Norm             Answer `json:"norm"`
	StepByStep       Answer `json:"stepByStep"`
	Scope            Answer `json:"scope"`
	TargetedIndustry Answer `json:"targetedIndustry"`
	ProtocolSpecific Answer `json:"protocolSpecific"`
	IndusAuthors     Answer `json:"indusAuthors"`
	GovAuthors       Answer `json:"govAuthors"`
	SearchName       Answer `json:"searchname"`

	CrossRefs CrossRefs `json:"crossrefs"`
}

// Field is a named, addressable descriptive field.
type Field struct {
	Key   string
	Label string
	Value *Answer
}

// Fields returns the descriptive fields in prompting order.
func (d *Document) Fields() []Field {
	return []Field{
		{Key: "norm", Label: "normative reference", Value: &d.Norm},
		{Key: "stepByStep", Label: "step-by-step guide", Value: &d.StepByStep},
		{Key: "scope", Label: "scope", Value: &d.Scope},
		{Key: "targetedIndustry", Label: "targets an industry", Value: &d.TargetedIndustry},
		{Key: "protocolSpecific", Label: "protocol specific", Value: &d.ProtocolSpecific},
		{Key: "indusAuthors", Label: "industry authors", Value: &d.IndusAuthors},
		{Key: "govAuthors", Label: "government authors", Value: &d.GovAuthors},
		{Key: "searchname", Label: "search alias", Value: &d.SearchName},
	}
}

// SearchTerm is the string other documents are searched for: the search alias
// when the operator entered one as text, the display name otherwise.
func (d *Document) SearchTerm() string {
	if alias, ok := d.SearchName.TextValue(); ok && alias != "" {
		return alias
	}
	return d.Name
}

// Missing returns the keys of descriptive fields that are still unset.
func (d *Document) Missing() []string {
	var keys []string
	for _, field := range d.Fields() {
		if !field.Value.IsSet() {
			keys = append(keys, field.Key)
		}
	}
	return keys
}
