package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuresList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/structures", r.URL.Path)
		w.Write([]byte(`{"files":["Si_a1b2c3.cif","Si_a1b2c3.xyz"],"count":2}`))
	})

	resp, err := c.Structures().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"Si_a1b2c3.cif", "Si_a1b2c3.xyz"}, resp.Files)
}

func TestStructuresDownload(t *testing.T) {
	const cif = "data_Si\n_cell_length_a 5.43\n"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/structures/Si_a1b2c3.cif", r.URL.Path)
		w.Header().Set("Content-Type", "chemical/x-cif")
		w.Write([]byte(cif))
	})

	data, err := c.Structures().Download(context.Background(), "Si_a1b2c3.cif")
	require.NoError(t, err)
	assert.Equal(t, cif, string(data))
}

func TestStructuresDownload_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"COMMON_003","message":"file \"missing.cif\" not found"}`))
	})

	_, err := c.Structures().Download(context.Background(), "missing.cif")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestStructuresDownload_RejectsPathTraversal(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	_, err = c.Structures().Download(context.Background(), "../etc/passwd")
	assert.Error(t, err)

	_, err = c.Structures().Download(context.Background(), "")
	assert.Error(t, err)
}
