package domain

import (
	"encoding/base64"
	"net/url"
	"strings"
)

const (
	KindNotebook = "Notebook"
	KindNote     = "Note"
)

// Key addresses an entity in the hierarchical keyspace. A notebook is
// never stored; its key exists only as the parent of its notes.
type Key struct {
	Parent *Key
	Kind   string
	Name   string
}

// NotebookKey derives the key for a named notebook. The same name
// always yields the same key.
func NotebookKey(name string) Key {
	return Key{Kind: KindNotebook, Name: name}
}

// NoteKey builds a note key parented at its notebook.
func NoteKey(notebook, id string) Key {
	parent := NotebookKey(notebook)
	return Key{Parent: &parent, Kind: KindNote, Name: id}
}

func (k Key) path() string {
	segment := k.Kind + ":" + url.PathEscape(k.Name)
	if k.Parent == nil {
		return segment
	}
	return k.Parent.path() + "/" + segment
}

// Encode returns the urlsafe string form of the key, suitable for use
// in query parameters and form fields.
func (k Key) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.path()))
}

// ParseKey decodes a urlsafe key. Anything that does not round-trip
// through Encode yields ErrInvalidKey.
func ParseKey(encoded string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Key{}, InvalidKeyError{Value: encoded}
	}

	var parent *Key
	for _, segment := range strings.Split(string(raw), "/") {
		kind, escaped, found := strings.Cut(segment, ":")
		if !found || kind == "" {
			return Key{}, InvalidKeyError{Value: encoded}
		}
		name, err := url.PathUnescape(escaped)
		if err != nil || name == "" {
			return Key{}, InvalidKeyError{Value: encoded}
		}
		key := Key{Parent: parent, Kind: kind, Name: name}
		parent = &key
	}

	if parent == nil {
		return Key{}, InvalidKeyError{Value: encoded}
	}
	return *parent, nil
}

// ParseNoteKey decodes a urlsafe key and checks that it addresses a
// note under a notebook.
func ParseNoteKey(encoded string) (notebook string, id string, err error) {
	key, err := ParseKey(encoded)
	if err != nil {
		return "", "", err
	}
	if key.Kind != KindNote || key.Parent == nil || key.Parent.Kind != KindNotebook {
		return "", "", InvalidKeyError{Value: encoded}
	}
	return key.Parent.Name, key.Name, nil
}
