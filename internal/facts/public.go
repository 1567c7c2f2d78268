package facts

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

// ErrFileNotFound is returned when no public file matches a lookup.
var ErrFileNotFound = errors.New("public file not found")

// PublicFile describes a company file that declares a public identifier.
type PublicFile struct {
	PublicIdentifier string `json:"public_identifier" yaml:"public_identifier"`
	FileType         string `json:"file_type" yaml:"file_type"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	Template         string `json:"template,omitempty" yaml:"template,omitempty"`
	FilePath         string `json:"file_path" yaml:"file_path"`
}

func (p PublicFile) String() string {
	return fmt.Sprintf("%s-%s (%s)", p.PublicIdentifier, p.FileType, p.FilePath)
}

// ParsedCorporate is a corporate public file with its raw facts.
type ParsedCorporate struct {
	FileInfo PublicFile     `json:"file_info" yaml:"file_info"`
	Facts    map[string]any `json:"facts" yaml:"facts"`
}

// PublicIndex indexes the public company files below companies/ in a
// filesystem. It is immutable after construction.
type PublicIndex struct {
	fsys  fs.FS
	files map[string]PublicFile
}

// NewPublicIndex scans companies/*/*.yaml in fsys. Files without both a
// public_identifier and a type are skipped.
func NewPublicIndex(fsys fs.FS, logger zerolog.Logger) (*PublicIndex, error) {
	matches, err := fs.Glob(fsys, "companies/*/*.yaml")
	if err != nil {
		return nil, err
	}
	idx := &PublicIndex{fsys: fsys, files: make(map[string]PublicFile, len(matches))}
	for _, m := range matches {
		doc, err := decodeFile(fsys, m)
		if err != nil {
			return nil, err
		}
		id := str(doc, "public_identifier", "")
		typ := str(doc, "type", "")
		if id == "" || typ == "" {
			continue
		}
		idx.files[id+typ] = PublicFile{
			PublicIdentifier: id,
			FileType:         typ,
			Name:             str(doc, "name", ""),
			Template:         str(doc, "template", ""),
			FilePath:         m,
		}
	}
	logger.Info().Int("files", len(idx.files)).Msg("indexed public yaml files")
	return idx, nil
}

func decodeFile(fsys fs.FS, name string) (map[string]any, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// List returns the files of the given type ordered by path.
func (p *PublicIndex) List(fileType string) []PublicFile {
	out := []PublicFile{}
	for _, f := range p.files {
		if f.FileType == fileType {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// Lookup finds a file by identifier and type.
func (p *PublicIndex) Lookup(identifier, fileType string) (PublicFile, bool) {
	f, ok := p.files[identifier+fileType]
	return f, ok
}

// ParseCorporate reads the corporate file for identifier and returns its raw facts.
func (p *PublicIndex) ParseCorporate(identifier string) (ParsedCorporate, error) {
	info, ok := p.Lookup(identifier, "corporate")
	if !ok {
		return ParsedCorporate{}, fmt.Errorf("%w: unable to locate corporate file with %q", ErrFileNotFound, identifier)
	}
	doc, err := decodeFile(p.fsys, info.FilePath)
	if err != nil {
		return ParsedCorporate{}, err
	}
	if _, ok := doc["name"]; !ok {
		return ParsedCorporate{}, fmt.Errorf("%w: no 'name' field found in %s", carbon.ErrInvalidInput, path.Base(info.FilePath))
	}
	entries, _ := doc["facts"].([]any)
	return ParsedCorporate{FileInfo: info, Facts: RawFacts(entries)}, nil
}
