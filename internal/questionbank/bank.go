// Package questionbank holds the curated questions shipped with the
// application. Curated questions are served before any generated ones.
package questionbank

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

//go:embed bank.schema.json data/*.json
var embedded embed.FS

// ErrInvalidBank is returned for bank files that fail validation.
var ErrInvalidBank = errors.New("questionbank: invalid bank file")

// File is one bank file: questions of a subject for a set of grades.
type File struct {
	Name      string          `json:"-"`
	Subject   quiz.Subject    `json:"subject"`
	Grades    []quiz.Grade    `json:"grades"` // empty means every grade
	Questions []quiz.Question `json:"questions"`
}

// Covers reports whether the file applies to grade.
func (f File) Covers(grade quiz.Grade) bool {
	if len(f.Grades) == 0 {
		return true
	}
	for _, g := range f.Grades {
		if g == grade {
			return true
		}
	}
	return false
}

// Bank is an ordered collection of bank files.
type Bank struct {
	files []File
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
	defaultErr  error

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Default returns the bank embedded in the binary.
func Default() (*Bank, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultBank, defaultErr = Load(sub)
	})
	return defaultBank, defaultErr
}

// Load reads every *.json file at the root of fsys, in name order.
func Load(fsys fs.FS) (*Bank, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list bank files: %w", err)
	}
	sort.Strings(names)

	b := &Bank{}
	seen := make(map[string]string)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		f.Name = path.Base(name)
		for _, q := range f.Questions {
			if prev, dup := seen[q.ID]; dup {
				return nil, fmt.Errorf("%w: %s: question id %q already used in %s", ErrInvalidBank, name, q.ID, prev)
			}
			seen[q.ID] = name
		}
		b.files = append(b.files, f)
	}
	return b, nil
}

// Parse validates and decodes a single bank file.
func Parse(data []byte) (File, error) {
	s, err := bankSchema()
	if err != nil {
		return File{}, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	if err := s.Validate(doc); err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	for _, q := range f.Questions {
		if err := q.Validate(); err != nil {
			return File{}, fmt.Errorf("%w: %w", ErrInvalidBank, err)
		}
	}
	return f, nil
}

func bankSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := embedded.ReadFile("bank.schema.json")
		if err != nil {
			schemaErr = err
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			schemaErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("bank.schema.json", doc); err != nil {
			schemaErr = fmt.Errorf("add bank schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("bank.schema.json")
	})
	return schema, schemaErr
}

// Merge returns a bank with other's files after b's. Question ids must
// stay unique across both.
func (b *Bank) Merge(other *Bank) (*Bank, error) {
	out := &Bank{files: append(append([]File(nil), b.files...), other.files...)}
	seen := make(map[string]bool)
	for _, f := range out.files {
		for _, q := range f.Questions {
			if seen[q.ID] {
				return nil, fmt.Errorf("%w: question id %q defined twice", ErrInvalidBank, q.ID)
			}
			seen[q.ID] = true
		}
	}
	return out, nil
}

// Files returns the bank files in load order.
func (b *Bank) Files() []File {
	return append([]File(nil), b.files...)
}

// Lookup returns copies of every question for subject and grade, in file
// order. Questions sharing a reading passage stay adjacent.
func (b *Bank) Lookup(subject quiz.Subject, grade quiz.Grade) []quiz.Question {
	var out []quiz.Question
	for _, f := range b.files {
		if f.Subject != subject || !f.Covers(grade) {
			continue
		}
		for _, q := range f.Questions {
			out = append(out, q.Clone())
		}
	}
	return out
}

// Entry is one row of Summary.
type Entry struct {
	Subject quiz.Subject `json:"subject"`
	Grade   quiz.Grade   `json:"grade"`
	Count   int          `json:"count"`
	Matrix  int          `json:"matrix"`
}

// Summary counts the questions available for every subject and grade
// pair, skipping empty pairs.
func (b *Bank) Summary() []Entry {
	var out []Entry
	for _, sub := range quiz.Subjects {
		for _, g := range quiz.Grades {
			qs := b.Lookup(sub, g)
			if len(qs) == 0 {
				continue
			}
			e := Entry{Subject: sub, Grade: g, Count: len(qs)}
			for _, q := range qs {
				if q.Kind == quiz.KindMatrix {
					e.Matrix++
				}
			}
			out = append(out, e)
		}
	}
	return out
}
