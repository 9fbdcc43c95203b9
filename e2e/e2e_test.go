package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/pdfform"
)

// TestE2E_Fill_Filesystem runs the fill pipeline against a local bucket.
func TestE2E_Fill_Filesystem(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		Backend:     "filesystem",
		Bucket:      bucket,
		StorageRoot: seedBucket(t),
		Template:    templateObject,
		Schema:      schemaObject,
	})
	defer cleanup()

	runFillTests(t, baseURL)
}

// runFillTests contains the shared fill pipeline test logic. The bucket
// behind baseURL must hold the fixture template and schema.
func runFillTests(t *testing.T, baseURL string) {
	t.Helper()
	client := &http.Client{}

	t.Run("POST /fill_pdf returns the filled PDF", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"name": "Alice", "sex": "M", "ghost": "x"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NotEmpty(t, body)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

		values := filledValues(t, body)
		assert.Equal(t, "Alice", values["name"])
		assert.Equal(t, "M", values["sex"])
		assert.Equal(t, "Springfield", values["city"])
	})

	t.Run("POST /fill_pdf writes non Latin-1 text", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"name": "Иван €100", "sex": "M"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, "Иван €100", filledValues(t, body)["name"])
	})

	t.Run("POST /fill_pdf with null and empty values", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"name": "", "sex": null}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("POST /fill_pdf rejects values outside the schema", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"name": "Bob", "sex": "X"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result struct {
			Error         string               `json:"error"`
			InvalidFields []formfill.Violation `json:"invalidFields"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "Invalid values found", result.Error)
		require.Len(t, result.InvalidFields, 1)
		assert.Equal(t, "sex", result.InvalidFields[0].Field)
		assert.Equal(t, "X", result.InvalidFields[0].Value)
		assert.ElementsMatch(t, []string{"M", "F"}, result.InvalidFields[0].Allowed)
	})

	t.Run("POST /fill_pdf rejects a non-object body", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`["name"]`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("GET /fields lists the template fields", func(t *testing.T) {
		resp, err := client.Get(baseURL + "/fields")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var fields []formfill.Field
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&fields))

		kinds := make(map[string]formfill.FieldKind)
		for _, f := range fields {
			kinds[f.Name] = f.Kind
		}
		assert.Equal(t, formfill.KindText, kinds["name"])
		assert.Equal(t, formfill.KindText, kinds["city"])
		assert.Equal(t, formfill.KindChoiceGroup, kinds["sex"])
	})

	t.Run("GET /healthz", func(t *testing.T) {
		resp, err := client.Get(baseURL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// TestE2E_MissingObjects_Filesystem checks the phase specific failure
// messages when the configured objects do not exist.
func TestE2E_MissingObjects_Filesystem(t *testing.T) {
	root := seedBucket(t)
	client := &http.Client{}

	t.Run("missing template", func(t *testing.T) {
		baseURL, cleanup := startServer(t, ServerConfig{
			Port:        getOpenPort(t),
			Backend:     "filesystem",
			Bucket:      bucket,
			StorageRoot: root,
			Template:    "missing.pdf",
			Schema:      schemaObject,
		})
		defer cleanup()

		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"sex": "F"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Error while downloading pdf template", string(body))
	})

	t.Run("missing schema", func(t *testing.T) {
		baseURL, cleanup := startServer(t, ServerConfig{
			Port:        getOpenPort(t),
			Backend:     "filesystem",
			Bucket:      bucket,
			StorageRoot: root,
			Template:    templateObject,
			Schema:      "missing.json",
		})
		defer cleanup()

		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"sex": "F"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Error while downloading validation schema", string(body))
	})

	t.Run("template that is not a PDF", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, bucket, "broken.pdf"), []byte("not a pdf"), 0o600))

		baseURL, cleanup := startServer(t, ServerConfig{
			Port:        getOpenPort(t),
			Backend:     "filesystem",
			Bucket:      bucket,
			StorageRoot: root,
			Template:    "broken.pdf",
			Schema:      schemaObject,
		})
		defer cleanup()

		resp, err := client.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"sex": "F"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Error while filling pdf", string(body))
	})
}

// TestE2E_SchemaReflectsCurrentContent checks that the schema is read on
// every request.
func TestE2E_SchemaReflectsCurrentContent(t *testing.T) {
	root := seedBucket(t)

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		Backend:     "filesystem",
		Bucket:      bucket,
		StorageRoot: root,
		Template:    templateObject,
		Schema:      schemaObject,
	})
	defer cleanup()

	post := func() int {
		resp, err := http.Post(baseURL+"/fill_pdf", "application/json",
			bytes.NewReader([]byte(`{"sex": "X"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, post())

	err := os.WriteFile(filepath.Join(root, bucket, schemaObject), []byte(`{"sex": ["M", "F", "X"]}`), 0o600)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, post())
}

// TestE2E_CLI_Filesystem runs the one-off commands against a local bucket.
func TestE2E_CLI_Filesystem(t *testing.T) {
	cfg := ServerConfig{
		Backend:     "filesystem",
		Bucket:      bucket,
		StorageRoot: seedBucket(t),
		Template:    templateObject,
		Schema:      schemaObject,
	}

	t.Run("fill writes the PDF to stdout", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, cfg, `{"name": "Alice", "sex": "F"}`, "fill", "--out", "-")
		require.NoError(t, err, stderr)
		assert.True(t, bytes.HasPrefix([]byte(stdout), []byte("%PDF")))
	})

	t.Run("fill reports violations", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, cfg, `{"sex": "X"}`, "fill", "--out", "-")
		require.Error(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Invalid values found")
		assert.Contains(t, stderr, `sex: "X"`)
	})

	t.Run("fields as JSON", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, cfg, "", "fields", "--json")
		require.NoError(t, err, stderr)

		var fields []formfill.Field
		require.NoError(t, json.Unmarshal([]byte(stdout), &fields))
		assert.NotEmpty(t, fields)
	})

	t.Run("missing bucket setting fails at startup", func(t *testing.T) {
		bad := cfg
		bad.Bucket = ""
		_, stderr, err := runCLI(t, bad, "", "fields")
		require.Error(t, err)
		assert.Contains(t, stderr, "config")
	})
}

func filledValues(t *testing.T, doc []byte) map[string]string {
	t.Helper()
	filler, err := pdfform.NewFiller("")
	require.NoError(t, err)

	fields, err := filler.Fields(context.Background(), doc)
	require.NoError(t, err)

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Value
	}
	return values
}
