// Package manifest parses the project manifest (package.json) and keeps a
// live snapshot of it in sync with the filesystem.
//
// Scripts and dependencies are kept as ordered lists in declaration order,
// because the palette displays them in the order the author wrote them.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// DefaultName is the manifest file name watched by default.
const DefaultName = "package.json"

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("malformed manifest")

var errInvalidJSON = errors.New("invalid JSON")

// ParseError reports manifest content that could not be parsed.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Entry is one name/value pair from an object in the manifest, such as a
// script (name -> command) or a dependency (name -> version range).
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Manifest is the parsed subset of package.json the palette uses.
type Manifest struct {
	Name         string  `json:"name,omitempty"`
	Version      string  `json:"version,omitempty"`
	Scripts      []Entry `json:"scripts"`
	Dependencies []Entry `json:"dependencies"`

	// Raw is the text the manifest was parsed from.
	Raw string `json:"-"`
}

// Parse parses manifest content. name is only used in error messages.
// Missing scripts or dependencies objects yield empty lists.
func Parse(name string, data []byte) (*Manifest, error) {
	if !json.Valid(data) {
		return nil, &ParseError{Name: name, Err: errInvalidJSON}
	}
	if _, typ, _, err := jsonparser.Get(data); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	} else if typ != jsonparser.Object {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("top-level value is %s, want object", typ)}
	}

	m := &Manifest{Raw: string(data)}
	m.Name, _ = jsonparser.GetString(data, "name")
	m.Version, _ = jsonparser.GetString(data, "version")

	var err error
	if m.Scripts, err = entries(data, "scripts"); err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("scripts: %w", err)}
	}
	if m.Dependencies, err = entries(data, "dependencies"); err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("dependencies: %w", err)}
	}
	return m, nil
}

// entries walks the object at key in document order. String values are
// unescaped; other values are kept as raw JSON text.
func entries(data []byte, key string) ([]Entry, error) {
	if _, typ, _, err := jsonparser.Get(data, key); errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	} else if err != nil {
		return nil, err
	} else if typ == jsonparser.Null {
		return nil, nil
	} else if typ != jsonparser.Object {
		return nil, fmt.Errorf("value is %s, want object", typ)
	}

	var out []Entry
	err := jsonparser.ObjectEach(data, func(k, v []byte, typ jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(k)
		if err != nil {
			return err
		}
		value := string(v)
		if typ == jsonparser.String {
			if value, err = jsonparser.ParseString(v); err != nil {
				return err
			}
		}
		out = append(out, Entry{Name: name, Value: value})
		return nil
	}, key)
	return out, err
}
