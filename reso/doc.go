// Package reso provides a client for RESO Web API (OData) services.
//
// RESO Web API is the standard transport for real-estate MLS data:
// an OData service exposing resources like Property, Member and Office.
// This package implements query construction with bit-exact OData URL
// serialization, request execution, cursor-based bulk replication and a
// typed error taxonomy.
//
// # Architecture
//
// The package is organized into several components:
//
//   - QueryBuilder/Query: Fluent query construction with build-time
//     validation and deterministic URL serialization
//   - ReplicationQueryBuilder/ReplicationResponse: Bulk-transfer queries
//     and the next-link cursor protocol
//   - Client: Authenticated HTTP execution for queries, counts, key
//     access, metadata and replication
//   - Schema/ParseMetadata: Lightweight entity extraction from $metadata
//   - Errors: Sentinel errors plus APIError for status classification
//
// # Usage
//
// Create a client and run a query:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := reso.NewClient(
//		"https://api.mls.example.com/OData",
//		"bearer-token",
//		logger,
//		reso.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	query, err := reso.NewQueryBuilder("Property").
//		Filter("StandardStatus eq 'Active'").
//		Select("ListingKey", "City", "ListPrice").
//		OrderBy("ListPrice", "desc").
//		Top(10).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Execute(context.Background(), query)
//
// Bulk replication walks the cursor until exhausted:
//
//	rq, _ := reso.NewReplicationQueryBuilder("Property").Top(2000).Build()
//	page, err := client.ExecuteReplication(ctx, rq)
//	for err == nil && page.HasMore() {
//		page, err = client.ExecuteNextLink(ctx, page.NextLink)
//	}
//
// # Query Serialization
//
// Serialization is deterministic: parameters always appear in the order
// $apply, $filter, $select, $expand, $orderby, $top, $skip, $count,
// regardless of builder call order. Filter, orderby and apply values are
// percent-encoded (spaces as %20); select and expand lists keep raw
// commas. Key access serializes as Resource('key') and count-only
// queries as Resource/$count.
//
// # Error Handling
//
// Every error wraps one of the package sentinels, so callers classify
// with errors.Is:
//
//	_, err := client.Execute(ctx, query)
//	if errors.Is(err, reso.ErrRateLimited) {
//		// back off and retry later
//	}
//
// Status-carrying errors are *APIError with helper methods:
//
//	var apiErr *reso.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// refresh the token
//	}
package reso
