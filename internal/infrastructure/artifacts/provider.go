package artifacts

import (
	"sync"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
)

// Provider lazily loads a bundle exactly once, no matter how many goroutines
// ask for it concurrently.  A load failure is sticky: every caller observes
// the same error and the process never runs on partial artifacts.
type Provider struct {
	dir    string
	logger logging.Logger

	once   sync.Once
	bundle *Bundle
	err    error
}

// NewProvider returns a provider over the bundle directory.  Nothing is read
// until the first Get.
func NewProvider(dir string, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Provider{dir: dir, logger: logger}
}

// Get returns the loaded bundle, loading it on first use.
func (p *Provider) Get() (*Bundle, error) {
	p.once.Do(func() {
		p.logger.Info("loading model artifacts", logging.String("dir", p.dir))
		p.bundle, p.err = Load(p.dir)
		if p.err != nil {
			p.logger.Error("artifact load failed", logging.Err(p.err))
			return
		}
		p.logger.Info("model artifacts loaded",
			logging.Int("catalog_entries", len(p.bundle.Catalog)),
			logging.Int("feature_dim", p.bundle.VAE.InputDim()))
	})
	return p.bundle, p.err
}
