package annotations

import "github.com/vportal/odata-client/internal/constants"

// Typed views over the most common UI vocabulary terms. These flatten the
// CSDL records into plain structs; they do not evaluate paths or dynamic
// expressions.

// DataField is one column/field record from UI.LineItem, UI.Identification
// or a UI.FieldGroup.
type DataField struct {
	Type       string // DataField, DataFieldForAction, DataFieldForAnnotation, ...
	Label      string
	Value      string // Path for plain data fields
	Action     string // populated for DataFieldForAction
	Target     string // populated for DataFieldForAnnotation
	Importance string // High, Medium, Low; empty when unannotated
}

// HeaderInfo mirrors UI.HeaderInfo
type HeaderInfo struct {
	TypeName       string
	TypeNamePlural string
	Title          string // value path of the Title data field
	Description    string // value path of the Description data field
}

// ContactField maps one Communication.Contact property to the entity
// property path backing it (fn, tel, email address, org, ...).
type ContactField struct {
	Property string
	Path     string
}

// LineItem returns the UI.LineItem data fields for a target, nil when the
// target carries no line item annotation.
func (d *Document) LineItem(target string) []DataField {
	return d.dataFields(d.Annotation(target, constants.TermLineItem))
}

// Identification returns the UI.Identification data fields for a target
func (d *Document) Identification(target string) []DataField {
	return d.dataFields(d.Annotation(target, constants.TermIdentification))
}

// FieldGroup returns the Data fields of a UI.FieldGroup with the given
// qualifier.
func (d *Document) FieldGroup(target, qualifier string) []DataField {
	ann := d.QualifiedAnnotation(target, constants.TermFieldGroup, qualifier)
	if ann == nil || ann.Record == nil {
		return nil
	}
	data := ann.Record.Property("Data")
	if data == nil || data.Collection == nil {
		return nil
	}
	return recordsToDataFields(data.Collection.Records)
}

func (d *Document) dataFields(ann *Annotation) []DataField {
	if ann == nil || ann.Collection == nil {
		return nil
	}
	return recordsToDataFields(ann.Collection.Records)
}

func recordsToDataFields(records []Record) []DataField {
	fields := make([]DataField, 0, len(records))
	for i := range records {
		rec := &records[i]
		field := DataField{
			Type:       rec.RecordType(),
			Label:      rec.Property("Label").Scalar(),
			Value:      rec.Property("Value").Scalar(),
			Action:     rec.Property("Action").Scalar(),
			Target:     rec.Property("Target").Scalar(),
			Importance: rec.Importance(),
		}
		fields = append(fields, field)
	}
	return fields
}

// HeaderInfo returns the UI.HeaderInfo annotation flattened, nil when absent
func (d *Document) HeaderInfo(target string) *HeaderInfo {
	ann := d.Annotation(target, constants.TermHeaderInfo)
	if ann == nil || ann.Record == nil {
		return nil
	}

	info := &HeaderInfo{
		TypeName:       ann.Record.Property("TypeName").Scalar(),
		TypeNamePlural: ann.Record.Property("TypeNamePlural").Scalar(),
	}
	if title := ann.Record.Property("Title"); title != nil && title.Record != nil {
		info.Title = title.Record.Property("Value").Scalar()
	}
	if desc := ann.Record.Property("Description"); desc != nil && desc.Record != nil {
		info.Description = desc.Record.Property("Value").Scalar()
	}
	return info
}

// SelectionFields returns the UI.SelectionFields property paths
func (d *Document) SelectionFields(target string) []string {
	ann := d.Annotation(target, constants.TermSelectionFields)
	if ann == nil || ann.Collection == nil {
		return nil
	}
	return ann.Collection.PropertyPaths
}

// Contact returns the Communication.Contact mapping for a target. Nested
// structures (tel, adr, email) flatten to dotted property names like
// "tel.uri".
func (d *Document) Contact(target string) []ContactField {
	ann := d.Annotation(target, constants.TermContact)
	if ann == nil || ann.Record == nil {
		return nil
	}
	return flattenContact("", ann.Record)
}

func flattenContact(prefix string, rec *Record) []ContactField {
	var fields []ContactField
	for i := range rec.PropertyValues {
		pv := &rec.PropertyValues[i]
		name := pv.Property
		if prefix != "" {
			name = prefix + "." + name
		}
		switch {
		case pv.Record != nil:
			fields = append(fields, flattenContact(name, pv.Record)...)
		case pv.Collection != nil:
			for j := range pv.Collection.Records {
				fields = append(fields, flattenContact(name, &pv.Collection.Records[j])...)
			}
		default:
			// Enum members like tel/type describe the slot, not a data path
			if path := pv.Path; path != "" {
				fields = append(fields, ContactField{Property: name, Path: path})
			}
		}
	}
	return fields
}
