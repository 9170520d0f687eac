package reso

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicationQuerySerialization(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*ReplicationQuery, error)
		want  string
	}{
		{
			name: "resource only",
			build: func() (*ReplicationQuery, error) {
				return NewReplicationQueryBuilder("Property").Build()
			},
			want: "Property/replication",
		},
		{
			name: "full batch",
			build: func() (*ReplicationQuery, error) {
				return NewReplicationQueryBuilder("Property").Top(2000).Build()
			},
			want: "Property/replication?$top=2000",
		},
		{
			name: "filter",
			build: func() (*ReplicationQuery, error) {
				return NewReplicationQueryBuilder("Property").
					Filter("StandardStatus eq 'Active'").
					Build()
			},
			want: "Property/replication?$filter=StandardStatus%20eq%20%27Active%27",
		},
		{
			name: "select",
			build: func() (*ReplicationQuery, error) {
				return NewReplicationQueryBuilder("Property").
					Select("ListingKey", "City", "ListPrice").
					Build()
			},
			want: "Property/replication?$select=ListingKey,City,ListPrice",
		},
		{
			name: "all parameters in fixed order",
			build: func() (*ReplicationQuery, error) {
				return NewReplicationQueryBuilder("Property").
					Top(1000).
					Select("ListingKey", "City").
					Filter("City eq 'Austin'").
					Build()
			},
			want: "Property/replication?$filter=City%20eq%20%27Austin%27&$select=ListingKey,City&$top=1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query.ToODataString())
		})
	}
}

func TestReplicationQueryFilterEncoding(t *testing.T) {
	query, err := NewReplicationQueryBuilder("Property").
		Filter("City eq 'San Francisco' and ListPrice gt 1000000").
		Build()
	require.NoError(t, err)

	url := query.ToODataString()
	assert.Contains(t, url, "%20")
	assert.Contains(t, url, "%27")
	assert.NotContains(t, url, " ")
}

func TestReplicationQueryTopLimit(t *testing.T) {
	t.Run("at the limit", func(t *testing.T) {
		query, err := NewReplicationQueryBuilder("Property").Top(MaxReplicationTop).Build()
		require.NoError(t, err)
		assert.Equal(t, "Property/replication?$top=2000", query.ToODataString())
	})

	t.Run("over the limit", func(t *testing.T) {
		query, err := NewReplicationQueryBuilder("Property").Top(2001).Build()
		require.Error(t, err)
		assert.Nil(t, query)
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.Contains(t, err.Error(), "2001")
		assert.Contains(t, err.Error(), "2000")
	})
}

func TestReplicationResponse(t *testing.T) {
	tests := []struct {
		name     string
		records  int
		nextLink string
		hasMore  bool
	}{
		{name: "empty final page", records: 0, nextLink: "", hasMore: false},
		{name: "single record with more", records: 1, nextLink: "https://api.example.com/Property/replication?cursor=abc", hasMore: true},
		{name: "full page final", records: 2000, nextLink: "", hasMore: false},
		{name: "full page with more", records: 2000, nextLink: "https://api.example.com/next", hasMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]Record, tt.records)
			for i := range records {
				records[i] = Record{"ListingKey": fmt.Sprintf("L%05d", i)}
			}

			page := NewReplicationResponse(records, tt.nextLink)

			assert.Equal(t, tt.records, page.RecordCount)
			assert.Len(t, page.Records, tt.records)
			assert.Equal(t, tt.hasMore, page.HasMore())
			assert.Equal(t, tt.nextLink, page.NextLink)
		})
	}
}

func TestReplicationResponsePreservesOrder(t *testing.T) {
	records := []Record{
		{"ListingKey": "A"},
		{"ListingKey": "B"},
		{"ListingKey": "C"},
	}

	page := NewReplicationResponse(records, "")

	require.Equal(t, 3, page.RecordCount)
	assert.Equal(t, "A", page.Records[0]["ListingKey"])
	assert.Equal(t, "B", page.Records[1]["ListingKey"])
	assert.Equal(t, "C", page.Records[2]["ListingKey"])
}
