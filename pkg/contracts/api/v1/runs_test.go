package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackstats/pkg/contracts/domain"
)

func TestNewListRunsResponse(t *testing.T) {
	tests := []struct {
		name      string
		runs      []domain.RunSummary
		wantCount int
		wantData  string
	}{
		{name: "nil runs", runs: nil, wantCount: 0, wantData: `"data":[]`},
		{name: "two runs", runs: []domain.RunSummary{{ID: "a"}, {ID: "b"}}, wantCount: 2, wantData: `"id":"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewListRunsResponse(tt.runs)
			assert.Equal(t, "success", resp.Status)
			assert.Equal(t, tt.wantCount, resp.Count)

			data, err := json.Marshal(resp)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.wantData)
		})
	}
}
