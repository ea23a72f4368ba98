// Package progdb implements a YAML-backed program database holding the
// struct layouts and struct instances of a binary being decompiled.
package progdb

import (
	"fmt"
	"os"

	"github.com/benbjohnson/xform"
	"sigs.k8s.io/yaml"
)

// Ensure type implements interface.
var _ xform.ProgramDB = (*DB)(nil)

// DB represents a program database.
type DB struct {
	Structs   map[string][]Field `json:"structs"`
	Instances []Instance         `json:"instances"`
}

// Field represents a named struct field at a byte offset.
type Field struct {
	Offset uint64 `json:"offset"`
	Name   string `json:"name"`
}

// Instance represents a struct stored in the address range [Start, End).
type Instance struct {
	Start  uint64 `json:"start"`
	End    uint64 `json:"end"`
	Struct string `json:"struct"`
}

// Open reads and parses the database at path.
func Open(path string) (*DB, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	db, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Parse decodes and validates a database from YAML.
func Parse(buf []byte) (*DB, error) {
	var db DB
	if err := yaml.UnmarshalStrict(buf, &db); err != nil {
		return nil, err
	} else if err := db.Validate(); err != nil {
		return nil, err
	}
	return &db, nil
}

// Validate returns an error if an instance has an empty range or refers to an
// unknown struct, or if a struct has two fields at the same offset.
func (db *DB) Validate() error {
	for name, fields := range db.Structs {
		seen := make(map[uint64]string, len(fields))
		for _, f := range fields {
			if f.Name == "" {
				return fmt.Errorf("struct %s: field name required at offset %#x", name, f.Offset)
			} else if prev, ok := seen[f.Offset]; ok {
				return fmt.Errorf("struct %s: fields %s and %s share offset %#x", name, prev, f.Name, f.Offset)
			}
			seen[f.Offset] = f.Name
		}
	}

	for _, inst := range db.Instances {
		if _, ok := db.Structs[inst.Struct]; !ok {
			return fmt.Errorf("instance at %#x: unknown struct %q", inst.Start, inst.Struct)
		} else if inst.Start >= inst.End {
			return fmt.Errorf("instance at %#x: empty range", inst.Start)
		}
	}
	return nil
}

// StructTypes returns the fields of each struct keyed by offset.
func (db *DB) StructTypes() map[string]map[uint64]string {
	m := make(map[string]map[uint64]string, len(db.Structs))
	for name, fields := range db.Structs {
		m[name] = make(map[uint64]string, len(fields))
		for _, f := range fields {
			m[name][f.Offset] = f.Name
		}
	}
	return m
}

// StructInstances returns the address ranges of all struct instances.
func (db *DB) StructInstances() []xform.StructInstance {
	a := make([]xform.StructInstance, len(db.Instances))
	for i, inst := range db.Instances {
		a[i] = xform.StructInstance{Start: inst.Start, End: inst.End, Name: inst.Struct}
	}
	return a
}
