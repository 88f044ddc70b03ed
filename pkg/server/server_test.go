package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russellb/gerrymander/pkg/models/review"
	"github.com/russellb/gerrymander/pkg/services/config"
)

type stubQuerier struct {
	changes []*review.Change
}

func (s *stubQuerier) Query(ctx context.Context, spec review.QuerySpec, fn func(*review.Change) error) error {
	for _, c := range s.changes {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	client := &stubQuerier{changes: []*review.Change{
		{ID: "I1", Status: "NEW", Subject: "a change", CreatedOn: 100,
			Owner:   &review.Account{Username: "dan"},
			Patches: []*review.Patch{{Number: 1, CreatedOn: 100}}},
	}}

	router := ConfigureRouter(logger, Dependencies{
		Client: client,
		Config: &config.Config{Projects: []string{"nova"}},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		topLevel       []string
	}{
		{
			name:           "GetChanges",
			path:           "/api/v1/reports/changes",
			expectedStatus: http.StatusOK,
			topLevel:       []string{"table"},
		},
		{
			name:           "GetReviewStats",
			path:           "/api/v1/reports/reviewstats",
			expectedStatus: http.StatusOK,
			topLevel:       []string{"table", "list"},
		},
		{
			name:           "GetOpenStats",
			path:           "/api/v1/reports/openstats",
			expectedStatus: http.StatusOK,
			topLevel: []string{
				"list", "list", "list", "list",
				"table", "table", "table",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			var doc []map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(body, &doc))
			require.Len(t, doc, len(tc.topLevel))
			for i, key := range tc.topLevel {
				assert.Contains(t, doc[i], key)
			}
		})
	}
}

func TestWebAPI_UnknownRoute(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	router := ConfigureRouter(logger, Dependencies{
		Client: &stubQuerier{},
		Config: &config.Config{},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/api/v1/reports/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
