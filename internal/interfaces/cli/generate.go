package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MatGen-Intelligence/internal/application/export"
	"github.com/turtacn/MatGen-Intelligence/internal/bootstrap"
	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	constraintgpt "github.com/turtacn/MatGen-Intelligence/internal/intelligence/constraint_gpt"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

type generateOptions struct {
	query           string
	bandGap         string
	formationEnergy string
	bulkModulus     string
	nSamples        int
	temperature     float64
	formats         []string
	outputJSON      bool
}

func newGenerateCommand(root *RootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate candidate materials without running a server",
		Example: `  matgen generate --query "semiconductor with band gap above 1.5 eV"
  matgen generate --band-gap 1.0:2.0 --bulk-modulus 80:120 -n 5 --format cif,xyz`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}

			pipe, err := bootstrap.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer pipe.Close()

			constraints, err := resolveConstraints(cmd, pipe, opts)
			if err != nil {
				return err
			}

			materials, err := pipe.Service.GenerateMaterials(
				cmd.Context(), constraints, opts.nSamples, opts.temperature)
			if err != nil {
				return err
			}

			var files map[string]map[string]string
			if len(opts.formats) > 0 && len(materials) > 0 {
				files, err = pipe.Exporter.Export(materials, opts.formats)
				if err != nil {
					return err
				}
			}

			return printResult(cmd, opts, constraints, materials, files)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "natural-language property query")
	f.StringVar(&opts.bandGap, "band-gap", "", "band gap bounds in eV, formatted min:max")
	f.StringVar(&opts.formationEnergy, "formation-energy", "", "formation energy bounds in eV/atom, formatted min:max")
	f.StringVar(&opts.bulkModulus, "bulk-modulus", "", "bulk modulus bounds in GPa, formatted min:max")
	f.IntVarP(&opts.nSamples, "samples", "n", 10, "number of samples to draw")
	f.Float64VarP(&opts.temperature, "temperature", "t", 1.0, "sampling temperature (latent std dev)")
	f.StringSliceVar(&opts.formats, "format", nil, "structure file formats to write (cif, xyz)")
	f.BoolVar(&opts.outputJSON, "json", false, "print the full result as JSON")

	return cmd
}

func resolveConstraints(cmd *cobra.Command, pipe *bootstrap.Pipeline, opts *generateOptions) (material.Constraints, error) {
	partial := material.Constraints{}
	for name, raw := range map[string]string{
		"band_gap":         opts.bandGap,
		"formation_energy": opts.formationEnergy,
		"bulk_modulus":     opts.bulkModulus,
	} {
		if raw == "" {
			continue
		}
		r, err := parseRange(raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "flag --%s", strings.ReplaceAll(name, "_", "-"))
		}
		partial[name] = r
	}

	if len(partial) > 0 {
		return constraintgpt.PrepareConstraints(partial), nil
	}
	if opts.query == "" {
		return nil, errors.New(errors.ErrCodeBadRequest,
			"provide --query or at least one of --band-gap, --formation-energy, --bulk-modulus")
	}
	return pipe.Extractor.ProcessQuery(cmd.Context(), opts.query)
}

// parseRange parses "min:max" into a Range.
func parseRange(s string) (material.Range, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return material.Range{}, fmt.Errorf("expected min:max, got %q", s)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return material.Range{}, fmt.Errorf("invalid min %q", parts[0])
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return material.Range{}, fmt.Errorf("invalid max %q", parts[1])
	}
	return material.Range{Min: min, Max: max}, nil
}

type generateResult struct {
	Count       int                          `json:"count"`
	Constraints material.Constraints         `json:"constraints"`
	Materials   []export.MaterialVisData     `json:"materials"`
	Files       map[string]map[string]string `json:"files,omitempty"`
}

func printResult(cmd *cobra.Command, opts *generateOptions, constraints material.Constraints, materials []material.GeneratedMaterial, files map[string]map[string]string) error {
	if opts.outputJSON {
		blob, err := json.MarshalIndent(generateResult{
			Count:       len(materials),
			Constraints: constraints,
			Materials:   export.VisualizationData(materials, true),
			Files:       files,
		}, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(blob))
		return nil
	}

	if len(materials) == 0 {
		cmd.Println("No materials satisfied the requested constraints.")
		return nil
	}

	cmd.Printf("Generated %d material(s):\n", len(materials))
	for i, m := range materials {
		cmd.Printf("  %2d. %-12s %-10s distance=%.4f  band_gap=%.2f eV  E_form=%.2f eV/atom  K=%.1f GPa\n",
			i+1, m.Formula, m.MaterialID, m.Distance,
			m.TargetProperties[material.PropBandGap],
			m.TargetProperties[material.PropFormationEnergy],
			m.TargetProperties[material.PropBulkModulus])
	}
	for formula, byFormat := range files {
		for format, path := range byFormat {
			cmd.Printf("  wrote %s (%s): %s\n", formula, format, path)
		}
	}
	return nil
}
