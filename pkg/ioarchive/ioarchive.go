// Package ioarchive provides thin, path-based convenience wrappers around
// pkg/engine's Save/Load for each of the three archive formats. It is the
// only package in this module that touches a filesystem; everything else
// operates purely on in-memory archive.Node trees.
package ioarchive

import (
	"os"

	"github.com/flier/archiver/pkg/archive/abin"
	"github.com/flier/archiver/pkg/archive/ajson"
	"github.com/flier/archiver/pkg/archive/axml"
	"github.com/flier/archiver/pkg/engine"
	"github.com/flier/archiver/pkg/registry"
)

// WriteJSON saves value as JSON-shaped archive text to path.
func WriteJSON[T any](path string, value T, opts ...engine.Option) error {
	node := ajson.New()
	if err := engine.Save(node, registry.JSON, value, opts...); err != nil {
		return err
	}

	b, err := node.MarshalJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o644)
}

// ReadJSON loads a JSON-shaped archive from path into *value.
func ReadJSON[T any](path string, value *T, opts ...engine.Option) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	node, err := ajson.Parse(b)
	if err != nil {
		return err
	}

	return engine.Load(node, registry.JSON, value, opts...)
}

// WriteXML saves value as an XML-shaped archive document to path.
func WriteXML[T any](path string, value T, opts ...engine.Option) error {
	node := axml.New()
	if err := engine.Save(node, registry.XML, value, opts...); err != nil {
		return err
	}

	b, err := node.WriteXML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o644)
}

// ReadXML loads an XML-shaped archive from path into *value.
func ReadXML[T any](path string, value *T, opts ...engine.Option) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	node, err := axml.Parse(b)
	if err != nil {
		return err
	}

	return engine.Load(node, registry.XML, value, opts...)
}

// WriteBinary saves value as a flattened byte-stream archive to path.
func WriteBinary[T any](path string, value T, opts ...engine.Option) error {
	w := abin.NewWriter()
	if err := engine.Save(w, registry.Binary, value, opts...); err != nil {
		return err
	}

	return os.WriteFile(path, w.Bytes(), 0o644)
}

// ReadBinary loads a flattened byte-stream archive from path into *value.
func ReadBinary[T any](path string, value *T, opts ...engine.Option) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r := abin.NewReader(b)

	return engine.Load(r, registry.Binary, value, opts...)
}
