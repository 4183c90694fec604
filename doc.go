// Package simili recommends similar songs from their audio features.
//
// Every track carries a record of audio features (energy, tempo, valence, ...).
// Records are turned into fixed-length normalized vectors and a seed track is
// compared to the rest of the catalog by cosine similarity.
//
// # Quick Start
//
//	r, _ := simili.New(catalog.NewMock())
//	recs, _ := r.Recommend(ctx, "1", 3)
//	for _, rec := range recs {
//	    fmt.Println(rec.Title, rec.Similarity)
//	}
//
// # Catalog Sources
//
// A Recommender reads tracks from a catalog.Source:
//
//	catalog.NewMemory(tracks...)                    // in-memory
//	snapshot.Load(ctx, store, "catalog.snap")       // blob snapshot (local, S3, MinIO)
//	postgres.Connect(ctx, databaseURL)              // songs table
//	dynamo.New(ctx, "simili-tracks", region, "")    // DynamoDB table
//
// # Core Operations
//
// The two building blocks are exposed directly:
//
//	vec := simili.Vectorize(features.Record{"energy": 0.8, "tempo": 125})
//	results, _ := simili.Rank(vec, candidates)
//
// Rank is an exact brute-force scan. Large catalogs can plug in an approximate
// nearest-neighbor index through WithRanker.
package simili
