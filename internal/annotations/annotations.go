// Package annotations decodes OASIS OData CSDL/EDMX annotation documents of
// the kind consumed by UI frameworks to drive list/detail views. The package
// exposes the document as plain data; interpreting or rendering the
// annotations remains the framework's job.
package annotations

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/vportal/odata-client/internal/constants"
)

// EDMX represents the root edmx:Edmx document
type EDMX struct {
	XMLName      xml.Name     `xml:"Edmx"`
	Version      string       `xml:"Version,attr"`
	References   []Reference  `xml:"Reference"`
	DataServices DataServices `xml:"DataServices"`
}

// Reference points at a vocabulary document included by the annotations
type Reference struct {
	XMLName  xml.Name  `xml:"Reference"`
	URI      string    `xml:"Uri,attr"`
	Includes []Include `xml:"Include"`
}

// Include binds a vocabulary namespace to its alias
type Include struct {
	XMLName   xml.Name `xml:"Include"`
	Namespace string   `xml:"Namespace,attr"`
	Alias     string   `xml:"Alias,attr"`
}

// DataServices contains the annotation schemas
type DataServices struct {
	XMLName xml.Name `xml:"DataServices"`
	Schemas []Schema `xml:"Schema"`
}

// Schema groups annotations under a namespace
type Schema struct {
	XMLName     xml.Name      `xml:"Schema"`
	Namespace   string        `xml:"Namespace,attr"`
	Alias       string        `xml:"Alias,attr"`
	Annotations []Annotations `xml:"Annotations"`
}

// Annotations is one <Annotations Target="..."> block
type Annotations struct {
	XMLName     xml.Name     `xml:"Annotations"`
	Target      string       `xml:"Target,attr"`
	Qualifier   string       `xml:"Qualifier,attr"`
	Annotations []Annotation `xml:"Annotation"`
}

// Annotation is a single term application. Scalar values arrive as CSDL
// expression attributes; structured values as Record or Collection children.
type Annotation struct {
	XMLName        xml.Name    `xml:"Annotation"`
	Term           string      `xml:"Term,attr"`
	Qualifier      string      `xml:"Qualifier,attr"`
	String         string      `xml:"String,attr"`
	Bool           string      `xml:"Bool,attr"`
	Int            string      `xml:"Int,attr"`
	EnumMember     string      `xml:"EnumMember,attr"`
	Path           string      `xml:"Path,attr"`
	PropertyPath   string      `xml:"PropertyPath,attr"`
	AnnotationPath string      `xml:"AnnotationPath,attr"`
	Record         *Record     `xml:"Record"`
	Collection     *Collection `xml:"Collection"`
}

// Record is a structured CSDL value
type Record struct {
	XMLName        xml.Name        `xml:"Record"`
	Type           string          `xml:"Type,attr"`
	PropertyValues []PropertyValue `xml:"PropertyValue"`
	Annotations    []Annotation    `xml:"Annotation"`
}

// PropertyValue is one member of a Record
type PropertyValue struct {
	XMLName        xml.Name    `xml:"PropertyValue"`
	Property       string      `xml:"Property,attr"`
	String         string      `xml:"String,attr"`
	Bool           string      `xml:"Bool,attr"`
	Int            string      `xml:"Int,attr"`
	EnumMember     string      `xml:"EnumMember,attr"`
	Path           string      `xml:"Path,attr"`
	PropertyPath   string      `xml:"PropertyPath,attr"`
	AnnotationPath string      `xml:"AnnotationPath,attr"`
	Record         *Record     `xml:"Record"`
	Collection     *Collection `xml:"Collection"`
}

// Collection is an ordered CSDL value list
type Collection struct {
	XMLName         xml.Name `xml:"Collection"`
	Records         []Record `xml:"Record"`
	Strings         []string `xml:"String"`
	Paths           []string `xml:"Path"`
	PropertyPaths   []string `xml:"PropertyPath"`
	AnnotationPaths []string `xml:"AnnotationPath"`
}

// Well-known vocabulary aliases, used when the document's References omit
// explicit Include elements.
var defaultAliases = map[string]string{
	"com.sap.vocabularies.UI.v1":            "UI",
	"com.sap.vocabularies.Common.v1":        "Common",
	"com.sap.vocabularies.Communication.v1": "Communication",
	"Org.OData.Capabilities.V1":             "Capabilities",
	"Org.OData.Measures.V1":                 "Measures",
	"Org.OData.Core.V1":                     "Core",
}

// Document is a parsed annotation document with alias-normalized lookup by
// annotation target and term.
type Document struct {
	Version string
	targets map[string][]Annotation
	aliases map[string]string // vocabulary namespace -> alias
}

// Parse decodes an EDMX annotation document
func Parse(data []byte) (*Document, error) {
	var edmx EDMX
	if err := xml.Unmarshal(data, &edmx); err != nil {
		return nil, fmt.Errorf("failed to parse annotation XML: %w", err)
	}

	if len(edmx.DataServices.Schemas) == 0 {
		return nil, fmt.Errorf("no schemas found in annotation document")
	}

	doc := &Document{
		Version: edmx.Version,
		targets: make(map[string][]Annotation),
		aliases: make(map[string]string, len(defaultAliases)),
	}
	for ns, alias := range defaultAliases {
		doc.aliases[ns] = alias
	}
	for _, ref := range edmx.References {
		for _, inc := range ref.Includes {
			if inc.Alias != "" {
				doc.aliases[inc.Namespace] = inc.Alias
			}
		}
	}

	for _, schema := range edmx.DataServices.Schemas {
		for _, block := range schema.Annotations {
			normalized := make([]Annotation, 0, len(block.Annotations))
			for _, ann := range block.Annotations {
				ann.Term = doc.normalizeTerm(ann.Term)
				normalized = append(normalized, ann)
			}
			doc.targets[block.Target] = append(doc.targets[block.Target], normalized...)
		}
	}

	return doc, nil
}

// normalizeTerm rewrites a fully qualified term to its alias form, so that
// com.sap.vocabularies.UI.v1.LineItem and UI.LineItem look up identically.
func (d *Document) normalizeTerm(term string) string {
	for ns, alias := range d.aliases {
		if strings.HasPrefix(term, ns+".") {
			return alias + strings.TrimPrefix(term, ns)
		}
	}
	return term
}

// Targets returns all annotation targets in the document, sorted
func (d *Document) Targets() []string {
	targets := make([]string, 0, len(d.targets))
	for target := range d.targets {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// Annotations returns every annotation applied to a target
func (d *Document) Annotations(target string) []Annotation {
	return d.targets[target]
}

// Annotation looks up a term on a target. The term may be given in alias
// form ("UI.LineItem") or fully qualified. Returns nil when absent.
func (d *Document) Annotation(target, term string) *Annotation {
	return d.annotation(target, term, "")
}

// QualifiedAnnotation looks up a term with a specific qualifier
func (d *Document) QualifiedAnnotation(target, term, qualifier string) *Annotation {
	return d.annotation(target, term, qualifier)
}

func (d *Document) annotation(target, term, qualifier string) *Annotation {
	term = d.normalizeTerm(term)
	anns := d.targets[target]
	for i := range anns {
		if anns[i].Term == term && anns[i].Qualifier == qualifier {
			return &anns[i]
		}
	}
	return nil
}

// Property returns the named property value of a record, nil when absent
func (r *Record) Property(name string) *PropertyValue {
	if r == nil {
		return nil
	}
	for i := range r.PropertyValues {
		if r.PropertyValues[i].Property == name {
			return &r.PropertyValues[i]
		}
	}
	return nil
}

// Scalar returns the scalar expression carried by the property value,
// whichever attribute notation the document used.
func (pv *PropertyValue) Scalar() string {
	if pv == nil {
		return ""
	}
	for _, v := range []string{pv.String, pv.Path, pv.PropertyPath, pv.AnnotationPath, pv.EnumMember, pv.Bool, pv.Int} {
		if v != "" {
			return v
		}
	}
	return ""
}

// RecordType returns the record's type with the vocabulary namespace
// stripped, e.g. "DataFieldForAction".
func (r *Record) RecordType() string {
	if r == nil || r.Type == "" {
		return ""
	}
	if idx := strings.LastIndex(r.Type, "."); idx >= 0 {
		return r.Type[idx+1:]
	}
	return r.Type
}

// Importance returns the record's UI.Importance enum member short form
// (High, Medium, Low), empty when unannotated.
func (r *Record) Importance() string {
	if r == nil {
		return ""
	}
	for _, ann := range r.Annotations {
		term := ann.Term
		if term == constants.TermImportance || strings.HasSuffix(term, ".Importance") {
			if idx := strings.LastIndex(ann.EnumMember, "/"); idx >= 0 {
				return ann.EnumMember[idx+1:]
			}
			return ann.EnumMember
		}
	}
	return ""
}
