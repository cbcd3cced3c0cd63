package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/godilite/workforce-intel/internal/model"
)

const (
	PartnerMappingFile   = "partner_mapping.json"
	EngineerProfilesFile = "engineer_profiles.json"
	DashboardStatsFile   = "dashboard_stats.json"
	DataQualityFile      = "data_quality.json"
)

// Encode renders v as indented UTF-8 JSON with a trailing newline. HTML
// characters are left unescaped so comments read naturally.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Documents renders the report into its output files, keyed by file name.
func Documents(rep *model.Report) (map[string][]byte, error) {
	docs := map[string]any{
		PartnerMappingFile:   rep.Partners,
		EngineerProfilesFile: rep.Engineers,
		DashboardStatsFile:   rep.Stats,
		DataQualityFile:      rep.Quality,
	}
	out := make(map[string][]byte, len(docs))
	for name, v := range docs {
		b, err := Encode(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}

// WriteDir writes every document into dir. All files are staged as temps first
// and renamed only once every write has succeeded.
func WriteDir(dir string, rep *model.Report) error {
	docs, err := Documents(rep)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staged := make(map[string]string, len(docs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()

	for name, data := range docs {
		tmp, err := os.CreateTemp(dir, "."+name+".*")
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		staged[name] = tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
	}

	for name, tmp := range staged {
		if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}
		delete(staged, name)
	}
	return nil
}
