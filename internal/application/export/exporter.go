// Package export writes generated materials to interchange formats (CIF,
// XYZ), emits a per-material property sidecar, and builds the payload the
// web frontend renders in its 3D viewer.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Supported export formats.
const (
	FormatCIF = "cif"
	FormatXYZ = "xyz"
)

// Exporter writes structure files under one output directory.
type Exporter struct {
	outputDir string
	logger    logging.Logger
}

// NewExporter creates the output directory if needed.
func NewExporter(outputDir string, logger logging.Logger) (*Exporter, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStructureExportFailed, "create output directory")
	}
	return &Exporter{outputDir: outputDir, logger: logger}, nil
}

// OutputDir returns the directory files are written into.
func (e *Exporter) OutputDir() string {
	return e.outputDir
}

// Export writes each material in the requested formats plus a properties
// sidecar, returning formula to format to path.  A failure on one material is
// logged and skipped so the rest of the batch still exports.
func (e *Exporter) Export(materials []material.GeneratedMaterial, formats []string) (map[string]map[string]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatCIF}
	}
	e.logger.Info("exporting structures",
		logging.Int("materials", len(materials)),
		logging.String("dir", e.outputDir))

	exported := make(map[string]map[string]string, len(materials))
	for i := range materials {
		m := &materials[i]
		safe := safeName(m.MaterialID, m.Formula, i)
		files := make(map[string]string, len(formats)+1)

		for _, format := range formats {
			var (
				path string
				err  error
			)
			switch format {
			case FormatCIF:
				path = filepath.Join(e.outputDir, safe+".cif")
				err = writeCIF(path, m)
			case FormatXYZ:
				path = filepath.Join(e.outputDir, safe+".xyz")
				err = writeXYZ(path, m)
			default:
				e.logger.Warn("unsupported export format", logging.String("format", format))
				continue
			}
			if err != nil {
				e.logger.Error("structure export failed",
					logging.String("formula", m.Formula),
					logging.String("format", format),
					logging.Err(err))
				continue
			}
			files[format] = path
		}

		propsPath := filepath.Join(e.outputDir, safe+"_properties.json")
		if err := writeProperties(propsPath, m); err != nil {
			e.logger.Error("properties export failed",
				logging.String("formula", m.Formula),
				logging.Err(err))
		} else {
			files["properties_json"] = propsPath
		}

		exported[m.Formula] = files
	}
	return exported, nil
}

// safeName builds a filesystem-safe base name from the material identity.
func safeName(materialID, formula string, i int) string {
	if materialID == "" {
		materialID = fmt.Sprintf("gen_%d", i)
	}
	name := materialID + "_" + formula
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return name
}

// writeCIF emits a minimal CIF block: cell parameters plus fractional atom
// sites.
func writeCIF(path string, m *material.GeneratedMaterial) error {
	s := &m.Structure
	a, b, c := s.Lattice.Lengths()
	alpha, beta, gamma := s.Lattice.Angles()

	var sb strings.Builder
	fmt.Fprintf(&sb, "data_%s\n", m.Formula)
	fmt.Fprintf(&sb, "_chemical_formula_structural   %s\n", m.Formula)
	fmt.Fprintf(&sb, "_cell_length_a   %.6f\n", a)
	fmt.Fprintf(&sb, "_cell_length_b   %.6f\n", b)
	fmt.Fprintf(&sb, "_cell_length_c   %.6f\n", c)
	fmt.Fprintf(&sb, "_cell_angle_alpha   %.6f\n", alpha)
	fmt.Fprintf(&sb, "_cell_angle_beta   %.6f\n", beta)
	fmt.Fprintf(&sb, "_cell_angle_gamma   %.6f\n", gamma)
	sb.WriteString("loop_\n")
	sb.WriteString(" _atom_site_type_symbol\n")
	sb.WriteString(" _atom_site_label\n")
	sb.WriteString(" _atom_site_occupancy\n")
	sb.WriteString(" _atom_site_fract_x\n")
	sb.WriteString(" _atom_site_fract_y\n")
	sb.WriteString(" _atom_site_fract_z\n")

	for i, site := range s.Sites {
		frac, err := s.Lattice.Fractional(site.Coords)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCodeStructureExportFailed, "site %d", i)
		}
		occ := site.Occupancy
		if occ == 0 {
			occ = 1.0
		}
		fmt.Fprintf(&sb, " %s  %s%d  %.4f  %.6f  %.6f  %.6f\n",
			site.Element, site.Element, i, occ, frac[0], frac[1], frac[2])
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStructureExportFailed, "write cif")
	}
	return nil
}

// writeXYZ emits the plain XYZ format: atom count, comment, then one
// Cartesian line per site.
func writeXYZ(path string, m *material.GeneratedMaterial) error {
	s := &m.Structure

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d\n", len(s.Sites))
	fmt.Fprintf(&sb, "%s\n", m.Formula)
	for _, site := range s.Sites {
		fmt.Fprintf(&sb, "%s %.6f %.6f %.6f\n",
			site.Element, site.Coords[0], site.Coords[1], site.Coords[2])
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStructureExportFailed, "write xyz")
	}
	return nil
}

// propertiesSidecar is the JSON layout of the per-material sidecar file.
type propertiesSidecar struct {
	Formula         string  `json:"formula"`
	MaterialID      string  `json:"material_id"`
	BandGap         float64 `json:"band_gap"`
	FormationEnergy float64 `json:"formation_energy"`
	BulkModulus     float64 `json:"bulk_modulus"`
}

func writeProperties(path string, m *material.GeneratedMaterial) error {
	sc := propertiesSidecar{
		Formula:    m.Formula,
		MaterialID: m.MaterialID,
	}
	if len(m.TargetProperties) == material.PropertyDim {
		sc.BandGap = m.TargetProperties[material.PropBandGap]
		sc.FormationEnergy = m.TargetProperties[material.PropFormationEnergy]
		sc.BulkModulus = m.TargetProperties[material.PropBulkModulus]
	}

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStructureExportFailed, "marshal properties")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStructureExportFailed, "write properties")
	}
	return nil
}
