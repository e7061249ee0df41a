package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"atelier/internal/layout"
)

// ReadSnapshot decodes a layout snapshot in the given format
func ReadSnapshot(r io.Reader, format string) (*layout.Snapshot, error) {
	var snap layout.Snapshot

	switch format {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to parse snapshot YAML: %w", err)
		}
	case "", "json":
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &snap, nil
}

// ReadSnapshotFile loads a snapshot, picking the format from the extension
func ReadSnapshotFile(path string) (*layout.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return ReadSnapshot(f, FormatFromPath(path))
}

// WriteReport encodes a layout report in the given format
func WriteReport(w io.Writer, report *layout.Report, format string) error {
	switch format {
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report YAML: %w", err)
		}
	case "", "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report JSON: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// WriteReportFile writes a report, picking the format from the extension
func WriteReportFile(path string, report *layout.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := WriteReport(f, report, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
