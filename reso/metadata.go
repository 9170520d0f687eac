package reso

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// standardResources are the well-known RESO Data Dictionary resource
// names, in conventional order.
var standardResources = []string{
	"Property",
	"Member",
	"Office",
	"OpenHouse",
	"Media",
	"Team",
	"Contact",
	"InternetAddress",
	"Contacts",
	"HistoryTransactional",
}

// StandardResourceNames returns the well-known RESO resource names.
func StandardResourceNames() []string {
	return append([]string(nil), standardResources...)
}

// PropertyInfo describes one field of an entity type as declared in the
// service metadata.
type PropertyInfo struct {
	Name     string
	Type     string
	Nullable bool
	// MaxLength is 0 when the schema declares no length bound.
	MaxLength int
}

// EntityType is one entity definition from the service metadata.
type EntityType struct {
	Name       string
	Properties []PropertyInfo
}

// Schema is the queryable subset of a service's $metadata document:
// entity names and their fields. Relationships, enumerations and
// validation annotations are ignored.
type Schema struct {
	Namespace string
	Entities  map[string]EntityType
}

// ParseMetadata extracts entity definitions from an EDMX $metadata
// document, as returned by Client.FetchMetadata.
func ParseMetadata(xmlText string) (*Schema, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))

	schema := &Schema{Entities: make(map[string]EntityType)}
	var current *EntityType

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: XML parse error: %v", ErrParse, err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "Schema":
				for _, attr := range element.Attr {
					if attr.Name.Local == "Namespace" {
						schema.Namespace = attr.Value
					}
				}
			case "EntityType":
				entity := EntityType{}
				for _, attr := range element.Attr {
					if attr.Name.Local == "Name" {
						entity.Name = attr.Value
					}
				}
				current = &entity
			case "Property":
				if current == nil {
					continue
				}
				prop := PropertyInfo{Nullable: true}
				for _, attr := range element.Attr {
					switch attr.Name.Local {
					case "Name":
						prop.Name = attr.Value
					case "Type":
						prop.Type = attr.Value
					case "Nullable":
						prop.Nullable = attr.Value != "false"
					case "MaxLength":
						if n, err := strconv.Atoi(attr.Value); err == nil {
							prop.MaxLength = n
						}
					}
				}
				current.Properties = append(current.Properties, prop)
			}
		case xml.EndElement:
			if element.Name.Local == "EntityType" && current != nil {
				schema.Entities[current.Name] = *current
				current = nil
			}
		}
	}

	return schema, nil
}

// EntityNames returns all entity type names in sorted order.
func (s *Schema) EntityNames() []string {
	names := make([]string, 0, len(s.Entities))
	for name := range s.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StandardResources returns the RESO standard resources this schema
// defines, in conventional order.
func (s *Schema) StandardResources() []string {
	var found []string
	for _, name := range standardResources {
		if _, ok := s.Entities[name]; ok {
			found = append(found, name)
		}
	}
	return found
}
