package client

import (
	"context"
	"fmt"
)

// MaterialsClient calls the material-generation endpoints.
type MaterialsClient struct {
	client *Client
}

// Range is an inclusive [Min, Max] bound on one property, in real units.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GenerateRequest asks the server for candidate materials.  Either Query or
// Constraints must be set; when both are present, Constraints wins.
type GenerateRequest struct {
	// Query is a natural-language property description, e.g.
	// "semiconductor with band gap above 1.5 eV".
	Query string `json:"query,omitempty"`
	// Constraints maps property names (band_gap, formation_energy,
	// bulk_modulus) to requested bounds.  Missing properties are filled with
	// server defaults.
	Constraints map[string]Range `json:"constraints,omitempty"`
	// NSamples is the number of latent samples to draw (server default 10).
	NSamples int `json:"n_samples,omitempty"`
	// Temperature scales the latent sampling noise (server default 1.0).
	Temperature float64 `json:"temperature,omitempty"`
	// Formats lists structure file formats to export, e.g. "cif", "xyz".
	Formats []string `json:"formats,omitempty"`
	// IncludeStructures requests full atomic geometry in the response.
	IncludeStructures bool `json:"include_structures,omitempty"`
}

// LatticeParameters are the six scalar cell parameters.
type LatticeParameters struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	C     float64 `json:"c"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// StructureData is the atomic geometry of one generated material.
type StructureData struct {
	Formula           string            `json:"formula"`
	Atoms             []string          `json:"atoms"`
	Positions         [][3]float64      `json:"positions"`
	LatticeParameters LatticeParameters `json:"lattice_parameters"`
	LatticeVectors    [3][3]float64     `json:"lattice_vectors"`
}

// GeneratedMaterial is one result of a generation request.
type GeneratedMaterial struct {
	MaterialID       string         `json:"material_id"`
	Formula          string         `json:"formula"`
	TargetProperties []float64      `json:"target_properties"`
	Distance         float64        `json:"distance"`
	StructureData    *StructureData `json:"structure_data,omitempty"`
}

// GenerateResponse is the server's answer to a generation request.
type GenerateResponse struct {
	RequestID   string              `json:"request_id,omitempty"`
	Count       int                 `json:"count"`
	Constraints map[string]Range    `json:"constraints"`
	Materials   []GeneratedMaterial `json:"materials"`
	// Files maps formula to format to server-side file path for exports
	// requested via Formats.
	Files  map[string]map[string]string `json:"files,omitempty"`
	Cached bool                         `json:"cached"`
}

// Generate requests candidate materials matching the given constraints.
func (mc *MaterialsClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("client: request is required")
	}
	if req.Query == "" && len(req.Constraints) == 0 {
		return nil, fmt.Errorf("client: either query or constraints must be set")
	}

	var resp GenerateResponse
	if err := mc.client.post(ctx, "/api/v1/materials/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
