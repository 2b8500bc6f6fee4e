// Package iface reads and writes module interface files. An interface file
// holds everything later units need to resolve a module's symbols: value
// types, operators, class members, constructors, types, classes and
// instances. Files are msgpack documents with a private string table.
package iface

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Ext is the file extension of interface files.
const Ext = ".tif"

// увеличивать при любом изменении формата File
const schemaVersion uint16 = 1

// ErrSchema is returned for files written by an incompatible version.
var ErrSchema = errors.New("interface file schema mismatch")

// Sym is a symbol as two indices into File.Strings.
type Sym struct {
	Module uint32 `msgpack:"m"`
	Member uint32 `msgpack:"n"`
}

// Type is the serialised form of types.Type. Function types keep the
// argument and result in Params.
type Type struct {
	Kind    uint8  `msgpack:"k"`
	Var     uint32 `msgpack:"v,omitempty"`
	Context []Sym  `msgpack:"c,omitempty"`
	Symbol  Sym    `msgpack:"s,omitempty"`
	Params  []Type `msgpack:"p,omitempty"`
}

type Operator struct {
	Fixity     uint8 `msgpack:"f"`
	Precedence uint8 `msgpack:"p"`
}

type ClassRef struct {
	Class Sym    `msgpack:"c"`
	Param uint32 `msgpack:"p"`
}

type ConstructorRef struct {
	Data  Sym `msgpack:"d"`
	Arity int `msgpack:"a"`
}

// Value describes one exported value. Variables of Type are numbered from 1
// within the value; ClassRef.Param uses the same numbering.
type Value struct {
	Member      uint32          `msgpack:"n"`
	Type        Type            `msgpack:"t"`
	Operator    *Operator       `msgpack:"o,omitempty"`
	Class       *ClassRef       `msgpack:"c,omitempty"`
	Constructor *ConstructorRef `msgpack:"k,omitempty"`
}

type ClassInfo struct {
	Param   Type  `msgpack:"p"`
	Members []Sym `msgpack:"m"`
}

type TypeDecl struct {
	Member       uint32     `msgpack:"n"`
	Arity        int        `msgpack:"a"`
	Class        *ClassInfo `msgpack:"c,omitempty"`
	Constructors []Sym      `msgpack:"k,omitempty"`
}

type Instance struct {
	Class Sym `msgpack:"c"`
	Head  Sym `msgpack:"h"`
}

// File is the interface of one module.
type File struct {
	Schema    uint16     `msgpack:"schema"`
	Module    string     `msgpack:"module"`
	Unit      string     `msgpack:"unit"`
	Imports   []string   `msgpack:"imports,omitempty"`
	Strings   []string   `msgpack:"strings"`
	Values    []Value    `msgpack:"values,omitempty"`
	Types     []TypeDecl `msgpack:"types,omitempty"`
	Instances []Instance `msgpack:"instances,omitempty"`
}

// Encode writes f to w.
func Encode(w io.Writer, f *File) error {
	if err := msgpack.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode interface %s: %w", f.Module, err)
	}
	return nil
}

// Decode reads one file from r and checks its schema.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode interface: %w", err)
	}
	if f.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrSchema, f.Module, f.Schema, schemaVersion)
	}
	return &f, nil
}

// PathFor is the path of module's interface file inside dir.
func PathFor(dir, module string) string {
	return filepath.Join(dir, module+Ext)
}

// WriteFile stores f in dir, replacing any previous interface of the module
// atomically.
func WriteFile(dir string, f *File) (err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create interface dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("create interface file: %w", err)
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err = Encode(tmp, f); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close interface file: %w", err)
	}
	return os.Rename(tmp.Name(), PathFor(dir, f.Module))
}

// ReadFile loads one interface file.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interface: %w", err)
	}
	defer fh.Close()
	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
