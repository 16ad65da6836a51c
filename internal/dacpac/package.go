package dacpac

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sqlforge/sqlforge/internal/model"
	"github.com/sqlforge/sqlforge/internal/project"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

const (
	productName   = "sqlforge"
	productSchema = serializationNamespace

	contentTypesXML = `<?xml version="1.0" encoding="utf-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="text/xml" />
</Types>`
)

// Version is stamped by the release build; dev builds carry the default.
var Version = "0.0.0-dev"

// WritePackage builds the dacpac at outputPath. The four package parts are
// rendered in memory first so Origin.xml can carry the model checksum.
func WritePackage(outputPath string, m *model.Model, deps map[string][]resolve.Dependency, proj *project.Project) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var modelBuf bytes.Buffer
	if err := WriteModel(&modelBuf, m, deps, proj.Props, proj.Variables); err != nil {
		return fmt.Errorf("rendering model.xml: %w", err)
	}
	checksum := fmt.Sprintf("%X", sha256.Sum256(modelBuf.Bytes()))

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating package: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"model.xml", func(w io.Writer) error {
			_, err := w.Write(modelBuf.Bytes())
			return err
		}},
		{"DacMetadata.xml", func(w io.Writer) error {
			return writeMetadata(w, proj.Props.Name, proj.Props.Version)
		}},
		{"Origin.xml", func(w io.Writer) error {
			return writeOrigin(w, checksum, time.Now().UTC())
		}},
		{"[Content_Types].xml", func(w io.Writer) error {
			_, err := io.WriteString(w, contentTypesXML)
			return err
		}},
	}

	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", part.name, err)
		}
		if err := part.write(pw); err != nil {
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return f.Close()
}

// writeMetadata renders DacMetadata.xml.
func writeMetadata(w io.Writer, name, version string) error {
	x := newXMLWriter(w)
	x.start("DacType", "xmlns", serializationNamespace)
	x.element("Name", name)
	x.element("Version", version)
	x.end("DacType")
	return x.flush()
}

// writeOrigin renders Origin.xml with the model.xml checksum.
func writeOrigin(w io.Writer, modelChecksum string, now time.Time) error {
	stamp := now.Format(time.RFC3339)

	x := newXMLWriter(w)
	x.start("DacOrigin", "xmlns", serializationNamespace)

	x.start("PackageProperties")
	x.element("Version", "3.1.0.0")
	x.element("ContainsExportedData", "false")
	x.start("StreamVersions")
	x.element("Version", "2.0.0.0", "StreamName", "Data")
	x.element("Version", "1.0.0.0", "StreamName", "DeploymentContributors")
	x.end("StreamVersions")
	x.end("PackageProperties")

	x.start("Operation")
	x.element("Identity", productName)
	x.element("Start", stamp)
	x.element("End", stamp)
	x.element("ProductName", productName)
	x.element("ProductVersion", Version)
	x.element("ProductSchema", productSchema)
	x.end("Operation")

	x.start("Checksums")
	x.element("Checksum", modelChecksum, "Uri", "/model.xml")
	x.end("Checksums")

	x.element("ModelSchemaVersion", "2.9")
	x.end("DacOrigin")
	return x.flush()
}
