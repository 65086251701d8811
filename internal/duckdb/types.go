package duckdb

import "github.com/tinytelemetry/recall/internal/model"

// Type aliases re-export model types so store method signatures read
// naturally at call sites that only import duckdb.
type Card = model.Card
type CardID = model.CardID
type CardDraft = model.CardDraft
type ReviewLog = model.ReviewLog
type ReviewStats = model.ReviewStats
