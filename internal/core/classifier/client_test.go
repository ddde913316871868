package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "scan.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"category":"Brain Tumor","prediction":"yes","prediction_idx":5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Classify(context.Background(), "scan.png", strings.NewReader("fake-image-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "Brain Tumor", result.Category)
	assert.Equal(t, "yes", result.Prediction)
	assert.Equal(t, 5, result.PredictionIdx)
}

func TestClient_Classify_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Failed to load model"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Classify(context.Background(), "scan.png", strings.NewReader("fake"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "classifier error 500")
}

func TestClient_Classify_TransportError(t *testing.T) {
	// Nothing listens here.
	client := NewClient("http://127.0.0.1:1")
	_, err := client.Classify(context.Background(), "scan.png", strings.NewReader("fake"))
	require.Error(t, err)
}
