package facts

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// Collect walks every .yaml file below root in fsys and gathers the facts it
// declares. Facts are read from company.sources, sources, facts,
// products[].facts and properties[].facts. The company recorded on each fact
// is the file's parent directory and base name.
func Collect(fsys fs.FS, root string, logger zerolog.Logger) (Set, error) {
	set := make(Set)
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		doc, err := Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		before := set.Len()
		collectDocument(set, companyName(p), doc)
		logger.Debug().
			Str("file", p).
			Int("facts", set.Len()-before).
			Msg("collected facts")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func isYAML(p string) bool {
	ext := path.Ext(p)
	return ext == ".yaml" || ext == ".yml"
}

func companyName(p string) string {
	dir, file := path.Split(p)
	return path.Join(path.Base(strings.TrimSuffix(dir, "/")), file)
}

func collectDocument(set Set, company string, doc map[string]any) {
	if c, ok := doc["company"].(map[string]any); ok {
		if sources, ok := c["sources"].([]any); ok {
			collectSources(set, company, str(c, "template", GeneralTemplate), str(c, "channel", ""), sources)
		}
	}
	template := str(doc, "template", GeneralTemplate)
	channel := str(doc, "channel", "")
	if sources, ok := doc["sources"].([]any); ok {
		collectSources(set, company, template, channel, sources)
	}
	if entries, ok := doc["facts"].([]any); ok {
		collectEntries(set, company, template, channel, entries)
	}
	for _, p := range maps(doc["products"]) {
		if entries, ok := p["facts"].([]any); ok {
			collectEntries(set, company, str(p, "template", GeneralTemplate), "", entries)
		}
	}
	for _, p := range maps(doc["properties"]) {
		if entries, ok := p["facts"].([]any); ok {
			collectEntries(set, company, str(p, "template", GeneralTemplate), str(p, "channel", ""), entries)
		}
	}
}

// collectSources reads facts attached to a cited source. Every fact of a
// source carries the source url and its calculation flag.
func collectSources(set Set, company, template, channel string, sources []any) {
	for _, s := range maps(sources) {
		entries, ok := s["facts"].([]any)
		if !ok {
			continue
		}
		_, calc := s["calculation"]
		url := str(s, "url", "")
		for _, e := range maps(entries) {
			for k, v := range e {
				if isMetadata(k) {
					continue
				}
				addFact(set, Fact{
					Company:       company,
					URL:           url,
					IsCalculation: calc,
					Template:      template,
					Channel:       channel,
					Key:           k,
				}, v)
			}
		}
	}
}

// collectEntries reads bare fact entries. An entry with a calculation key is
// marked as a calculation.
func collectEntries(set Set, company, template, channel string, entries []any) {
	for _, e := range maps(entries) {
		_, calc := e["calculation"]
		for k, v := range e {
			if isMetadata(k) || k == "calculation" {
				continue
			}
			addFact(set, Fact{
				Company:       company,
				IsCalculation: calc,
				Template:      template,
				Channel:       channel,
				Key:           k,
			}, v)
		}
	}
}

func addFact(set Set, f Fact, v any) {
	d, ok := AsDecimal(v)
	if !ok {
		return
	}
	if f.URL == "" {
		f.URL = "n/a"
	}
	f.Value = d
	set.add(f)
}

func str(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func maps(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
