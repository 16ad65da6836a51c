package dacpac

import (
	"encoding/xml"
	"io"
)

// xmlWriter wraps an xml.Encoder with error latching so element writers read
// as straight-line code. attrs come in name/value pairs.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func newXMLWriter(w io.Writer) *xmlWriter {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return &xmlWriter{err: err}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &xmlWriter{enc: enc}
}

func startElement(name string, attrs []string) xml.StartElement {
	el := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		el.Attr = append(el.Attr, xml.Attr{
			Name:  xml.Name{Local: attrs[i]},
			Value: attrs[i+1],
		})
	}
	return el
}

func (x *xmlWriter) start(name string, attrs ...string) {
	if x.err != nil {
		return
	}
	x.err = x.enc.EncodeToken(startElement(name, attrs))
}

func (x *xmlWriter) end(name string) {
	if x.err != nil {
		return
	}
	x.err = x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

// empty writes a self-closing element.
func (x *xmlWriter) empty(name string, attrs ...string) {
	x.start(name, attrs...)
	x.end(name)
}

func (x *xmlWriter) text(s string) {
	if x.err != nil {
		return
	}
	x.err = x.enc.EncodeToken(xml.CharData(s))
}

// element writes <name attrs...>text</name>.
func (x *xmlWriter) element(name, body string, attrs ...string) {
	x.start(name, attrs...)
	x.text(body)
	x.end(name)
}

// property writes the dacpac Property form: <Property Name=... Value=.../>.
func (x *xmlWriter) property(name, value string) {
	x.empty("Property", "Name", name, "Value", value)
}

// scriptProperty writes a Property whose value is a script block:
// <Property Name=...><Value>script</Value></Property>.
func (x *xmlWriter) scriptProperty(name, script string) {
	x.start("Property", "Name", name)
	x.element("Value", script)
	x.end("Property")
}

// relationship writes a Relationship with one References entry per name.
func (x *xmlWriter) relationship(name string, refs ...string) {
	if len(refs) == 0 {
		return
	}
	x.start("Relationship", "Name", name)
	for _, ref := range refs {
		x.start("Entry")
		x.empty("References", "Name", ref)
		x.end("Entry")
	}
	x.end("Relationship")
}

// builtinRelationship writes a Relationship whose single reference carries
// ExternalSource="BuiltIns".
func (x *xmlWriter) builtinRelationship(name, ref string) {
	x.start("Relationship", "Name", name)
	x.start("Entry")
	x.empty("References", "ExternalSource", "BuiltIns", "Name", ref)
	x.end("Entry")
	x.end("Relationship")
}

// schemaRelationship marks SQL Server's built-in schemas as BuiltIns.
func (x *xmlWriter) schemaRelationship(schema string) {
	ref := "[" + schema + "]"
	if isBuiltinSchema(schema) {
		x.builtinRelationship("Schema", ref)
		return
	}
	x.relationship("Schema", ref)
}

func (x *xmlWriter) flush() error {
	if x.err != nil {
		return x.err
	}
	return x.enc.Flush()
}
