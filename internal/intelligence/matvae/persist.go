package matvae

import (
	"encoding/json"
	"os"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// weightsFile is the on-disk layout of a trained model.  The config block is
// echoed alongside the layers so a loaded bundle is self-describing and shape
// drift between training and serving is caught at load time.
type weightsFile struct {
	Config  VAEConfig `json:"config"`
	Encoder Encoder   `json:"encoder"`
	Decoder Decoder   `json:"decoder"`
}

// Save writes the model weights and architecture to path as JSON.
func (v *VAE) Save(path string) error {
	data, err := json.Marshal(weightsFile{
		Config:  v.cfg,
		Encoder: v.encoder,
		Decoder: v.decoder,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGenArtifactCorrupt, "marshal model weights")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeGenArtifactCorrupt, "write model weights")
	}
	return nil
}

// Load reads a weights file written by Save (or exported by the training
// pipeline) and returns a ready model.  Any shape inconsistency between the
// embedded config and the layers is a load failure.
func Load(path string) (*VAE, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeGenArtifactMissing, "model weights not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeGenArtifactCorrupt, "read model weights")
	}
	var wf weightsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenArtifactCorrupt, "decode model weights")
	}

	v, err := New(wf.Config)
	if err != nil {
		return nil, err
	}
	if err := v.SetWeights(wf.Encoder, wf.Decoder); err != nil {
		return nil, err
	}
	return v, nil
}
