package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// StructureHandler serves exported structure files for download.
type StructureHandler struct {
	outputDir string
	logger    logging.Logger
}

// NewStructureHandler serves files out of the exporter's output directory.
func NewStructureHandler(outputDir string, log logging.Logger) *StructureHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StructureHandler{outputDir: outputDir, logger: log}
}

var contentTypes = map[string]string{
	".cif":  "chemical/x-cif",
	".xyz":  "chemical/x-xyz",
	".json": "application/json",
}

// Download handles GET /api/v1/structures/:filename.  Only plain file names
// are accepted; anything that resolves outside the output directory is
// rejected.
func (h *StructureHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "invalid file name"))
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		respondError(c, errors.Newf(errors.ErrCodeNotFound, "file %q not found", name))
		return
	}

	ct := contentTypes[strings.ToLower(filepath.Ext(name))]
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Type", ct)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.File(path)
}

// List handles GET /api/v1/structures and returns the downloadable files.
func (h *StructureHandler) List(c *gin.Context) {
	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeStorageError, "read output directory"))
		return
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, e.Name())
		}
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}
