// Package artifacts loads the persisted model bundle the generation pipeline
// needs at startup: trained VAE weights, the fitted feature and property
// scalers, the reference material catalog, and its pre-built feature matrix.
// Loading is all-or-nothing; a missing or inconsistent artifact aborts
// initialization rather than leaving a component with partial state.
package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/intelligence/matvae"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Artifact file names within a bundle directory.
const (
	FileVAEConfig      = "vae_config.json"
	FileVAEWeights     = "vae_weights.json"
	FileFeatureScaler  = "feature_scaler.json"
	FilePropertyScaler = "property_scaler.json"
	FileCatalog        = "materials_catalog.json"
	FileFeatureMatrix  = "feature_matrix.json"
)

// Bundle is the loaded, cross-validated artifact set.  Read-only after Load;
// safe to share across concurrent requests without locking.
type Bundle struct {
	VAE            *matvae.VAE
	FeatureScaler  *material.MinMaxScaler
	PropertyScaler *material.MinMaxScaler
	Catalog        []material.Material
	FeatureMatrix  [][]float64
}

// Load reads every artifact from dir and validates them against each other:
// the catalog and feature matrix must align row for row, and every
// dimensionality must agree with the VAE architecture.
func Load(dir string) (*Bundle, error) {
	var cfg matvae.VAEConfig
	if err := readJSON(filepath.Join(dir, FileVAEConfig), &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vae, err := matvae.Load(filepath.Join(dir, FileVAEWeights))
	if err != nil {
		return nil, err
	}
	if vae.Config().InputDim != cfg.InputDim ||
		vae.Config().LatentDim != cfg.LatentDim ||
		vae.Config().PropertyDim != cfg.PropertyDim {
		return nil, errors.Newf(errors.ErrCodeGenArtifactCorrupt,
			"weights architecture %+v disagrees with %s", vae.Config(), FileVAEConfig)
	}

	featureScaler := &material.MinMaxScaler{}
	if err := readJSON(filepath.Join(dir, FileFeatureScaler), featureScaler); err != nil {
		return nil, err
	}
	if err := featureScaler.Validate(); err != nil {
		return nil, err
	}

	propertyScaler := &material.MinMaxScaler{}
	if err := readJSON(filepath.Join(dir, FilePropertyScaler), propertyScaler); err != nil {
		return nil, err
	}
	if err := propertyScaler.Validate(); err != nil {
		return nil, err
	}

	var catalog []material.Material
	if err := readJSON(filepath.Join(dir, FileCatalog), &catalog); err != nil {
		return nil, err
	}
	var matrix [][]float64
	if err := readJSON(filepath.Join(dir, FileFeatureMatrix), &matrix); err != nil {
		return nil, err
	}

	b := &Bundle{
		VAE:            vae,
		FeatureScaler:  featureScaler,
		PropertyScaler: propertyScaler,
		Catalog:        catalog,
		FeatureMatrix:  matrix,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// validate cross-checks every artifact pair whose dimensions must agree.
func (b *Bundle) validate() error {
	if len(b.Catalog) == 0 {
		return errors.New(errors.ErrCodeCatalogEmpty, "materials catalog has no entries")
	}
	if len(b.FeatureMatrix) != len(b.Catalog) {
		return errors.Newf(errors.ErrCodeCatalogInconsistent,
			"feature matrix has %d rows, catalog has %d entries",
			len(b.FeatureMatrix), len(b.Catalog))
	}

	dim := b.VAE.InputDim()
	for i, row := range b.FeatureMatrix {
		if len(row) != dim {
			return errors.Newf(errors.ErrCodeCatalogInconsistent,
				"feature matrix row %d has %d columns, model input is %d", i, len(row), dim)
		}
	}
	if b.FeatureScaler.Dim() != dim {
		return errors.Newf(errors.ErrCodeScalerDimMismatch,
			"feature scaler fitted on %d columns, model input is %d",
			b.FeatureScaler.Dim(), dim)
	}
	if b.PropertyScaler.Dim() != b.VAE.PropertyDim() {
		return errors.Newf(errors.ErrCodeScalerDimMismatch,
			"property scaler fitted on %d columns, model conditions on %d",
			b.PropertyScaler.Dim(), b.VAE.PropertyDim())
	}
	if b.VAE.PropertyDim() != material.PropertyDim {
		return errors.Newf(errors.ErrCodeGenArtifactCorrupt,
			"model conditions on %d properties, pipeline supports %d",
			b.VAE.PropertyDim(), material.PropertyDim)
	}

	for i := range b.Catalog {
		if b.Catalog[i].MaterialID == "" {
			return errors.Newf(errors.ErrCodeCatalogInconsistent,
				"catalog entry %d has no material_id", i)
		}
		if err := b.Catalog[i].Structure.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrCodeCatalogInconsistent,
				"catalog entry %d (%s)", i, b.Catalog[i].MaterialID)
		}
	}
	return nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrCodeGenArtifactMissing,
				"artifact %s", filepath.Base(path))
		}
		return errors.Wrapf(err, errors.ErrCodeGenArtifactCorrupt,
			"read artifact %s", filepath.Base(path))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, errors.ErrCodeGenArtifactCorrupt,
			"decode artifact %s", filepath.Base(path))
	}
	return nil
}
