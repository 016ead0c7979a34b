// Package schemafile declares record types from a YAML (or JSON) document:
//
//	types:
//	  TLS:
//	    fields:
//	      cert: string
//	      key: string
//	  Server:
//	    preserving: true
//	    fields:
//	      host: string
//	      port: int
//	      tls: TLS
//
// Field order follows the document. A field type is a built-in scalar name
// (any, string, int, float, number, bool, list, map) or another type of the
// same document, declared before its users regardless of document order.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/nonesafe"
)

// Set is the collection of record types declared by one document.
type Set struct {
	types map[string]*nonesafe.RecordType
	order []string
}

// Type returns a declared type by name.
func (s *Set) Type(name string) (*nonesafe.RecordType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names lists type names in document order.
func (s *Set) Names() []string { return append([]string(nil), s.order...) }

type fieldDecl struct {
	name string
	typ  string
	line int
}

type typeDecl struct {
	name       string
	preserving bool
	fields     []fieldDecl
	line       int
}

// Load parses data and declares every type it describes.
func Load(data []byte) (*Set, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemafile: empty document")
		}
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	decls, err := readDecls(&root)
	if err != nil {
		return nil, err
	}
	return declareAll(decls)
}

func readDecls(root *yaml.Node) ([]typeDecl, error) {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schemafile: line %d: document must be a mapping", doc.Line)
	}
	typesNode := lookup(doc, "types")
	if typesNode == nil {
		return nil, fmt.Errorf("schemafile: line %d: missing top-level \"types\"", doc.Line)
	}
	if typesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schemafile: line %d: \"types\" must be a mapping", typesNode.Line)
	}

	var decls []typeDecl
	seen := map[string]bool{}
	for i := 0; i+1 < len(typesNode.Content); i += 2 {
		k, v := typesNode.Content[i], typesNode.Content[i+1]
		if seen[k.Value] {
			return nil, fmt.Errorf("schemafile: line %d: type %q declared twice", k.Line, k.Value)
		}
		seen[k.Value] = true
		td := typeDecl{name: k.Value, line: k.Line}
		if v.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("schemafile: line %d: type %q must be a mapping", v.Line, k.Value)
		}
		if p := lookup(v, "preserving"); p != nil {
			if err := p.Decode(&td.preserving); err != nil {
				return nil, fmt.Errorf("schemafile: line %d: preserving: %w", p.Line, err)
			}
		}
		fields := lookup(v, "fields")
		if fields != nil && fields.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("schemafile: line %d: fields of %q must be a mapping", fields.Line, k.Value)
		}
		if fields != nil {
			for j := 0; j+1 < len(fields.Content); j += 2 {
				fk, fv := fields.Content[j], fields.Content[j+1]
				if fv.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("schemafile: line %d: type of field %s.%s must be a name", fv.Line, k.Value, fk.Value)
				}
				td.fields = append(td.fields, fieldDecl{name: fk.Value, typ: fv.Value, line: fv.Line})
			}
		}
		decls = append(decls, td)
	}
	return decls, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// declareAll declares types depth-first so referenced types exist first.
// Reference cycles are rejected: construction would recurse forever.
func declareAll(decls []typeDecl) (*Set, error) {
	byName := make(map[string]*typeDecl, len(decls))
	for i := range decls {
		byName[decls[i].name] = &decls[i]
	}
	set := &Set{types: make(map[string]*nonesafe.RecordType, len(decls))}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(decls))

	var visit func(td *typeDecl, chain []string) error
	visit = func(td *typeDecl, chain []string) error {
		switch state[td.name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("schemafile: line %d: reference cycle %v", td.line, append(chain, td.name))
		}
		state[td.name] = visiting
		fields := make(nonesafe.Fields, 0, len(td.fields))
		for _, fd := range td.fields {
			if st, ok := nonesafe.ScalarByName(fd.typ); ok {
				fields = append(fields, nonesafe.F(fd.name, st))
				continue
			}
			dep, ok := byName[fd.typ]
			if !ok {
				return fmt.Errorf("schemafile: line %d: field %s.%s: unknown type %q", fd.line, td.name, fd.name, fd.typ)
			}
			if err := visit(dep, append(chain, td.name)); err != nil {
				return err
			}
			fields = append(fields, nonesafe.F(fd.name, set.types[dep.name]))
		}
		declare := nonesafe.Declare
		if td.preserving {
			declare = nonesafe.DeclarePreserving
		}
		rt, err := declare(td.name, fields)
		if err != nil {
			return fmt.Errorf("schemafile: line %d: type %q: %w", td.line, td.name, err)
		}
		set.types[td.name] = rt
		state[td.name] = done
		return nil
	}

	for i := range decls {
		if err := visit(&decls[i], nil); err != nil {
			return nil, err
		}
		set.order = append(set.order, decls[i].name)
	}
	return set, nil
}
