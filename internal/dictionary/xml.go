package dictionary

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

type openGroup struct {
	entry GroupEntry
	depth int // open <group> elements inside this repeatingGroup
}

func parseXML(data []byte) (Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var doc Document
	var stack []*openGroup
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "repeatingGroup":
				tag, err := tagAttr(el)
				if err != nil {
					return Document{}, err
				}
				stack = append(stack, &openGroup{entry: GroupEntry{Tag: tag}})
			case "group":
				if len(stack) > 0 {
					stack[len(stack)-1].depth++
				}
			case "field":
				tag, err := tagAttr(el)
				if err != nil {
					return Document{}, err
				}
				doc.Fields = append(doc.Fields, FieldEntry{Tag: tag, Name: attr(el, "description")})
				if n := len(stack); n > 0 && stack[n-1].depth > 0 {
					stack[n-1].entry.Members = append(stack[n-1].entry.Members, tag)
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "repeatingGroup":
				if n := len(stack); n > 0 {
					doc.Groups = append(doc.Groups, stack[n-1].entry)
					stack = stack[:n-1]
				}
			case "group":
				if n := len(stack); n > 0 && stack[n-1].depth > 0 {
					stack[n-1].depth--
				}
			}
		}
	}
	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func tagAttr(el xml.StartElement) (uint32, error) {
	raw := strings.TrimSpace(attr(el, "name"))
	tag, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &FieldError{Element: el.Name.Local, Attr: "name", Value: raw, Err: err}
	}
	return uint32(tag), nil
}
