// Package flatten projects stored live samples into flat records usable for
// direct tabular analysis.
package flatten

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mkraev/aqwatch/internal/models"
)

// dropFields are the storage-identity, coordinate, wrapper and bookkeeping
// fields removed from every flattened record.
var dropFields = map[string]struct{}{
	"_id":        {},
	"coord":      {},
	"list":       {},
	"main":       {},
	"dt":         {},
	"components": {},
}

// Records flattens stored live sample documents, preserving input order.
// Documents missing their component mapping or display timestamp are dropped.
func Records(docs []bson.M) []models.FlattenedLiveRecord {
	out := make([]models.FlattenedLiveRecord, 0, len(docs))
	for _, doc := range docs {
		if rec, ok := record(doc); ok {
			out = append(out, rec)
		}
	}
	return out
}

func record(doc bson.M) (models.FlattenedLiveRecord, bool) {
	components, ok := asDocument(doc["components"])
	if !ok {
		return nil, false
	}
	if ts, ok := doc["timestamp"].(string); !ok || ts == "" {
		return nil, false
	}

	rec := make(models.FlattenedLiveRecord, len(doc)+len(components))
	for key, value := range doc {
		if _, dropped := dropFields[key]; dropped {
			continue
		}
		rec[key] = value
	}

	// The index is content, not wrapper: promote it before main is dropped.
	if main, ok := asDocument(doc["main"]); ok {
		if aqi, ok := main["aqi"]; ok {
			rec["aqi"] = aqi
		}
	}

	for name, value := range components {
		rec[name] = value
	}

	return rec, true
}

// asDocument normalizes the document shapes the driver may hand back for a
// nested field.
func asDocument(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case map[string]any:
		return t, true
	case bson.D:
		return t.Map(), true
	default:
		return nil, false
	}
}
