package flatten

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func storedDoc(dt int64, components bson.M) bson.M {
	return bson.M{
		"_id":            primitive.NewObjectID(),
		"coord":          bson.M{"lon": -75.59, "lat": 6.25},
		"main":           bson.M{"aqi": int32(2)},
		"components":     components,
		"dt":             dt,
		"timestamp_unix": dt,
		"timestamp":      "2025-04-05 19:10:43",
	}
}

func TestRecordsExpandsComponents(t *testing.T) {
	docs := []bson.M{storedDoc(1743880243, bson.M{"co": 1.0, "no2": 2.0})}

	records := Records(docs)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	rec := records[0]
	if rec["co"] != 1.0 {
		t.Errorf("co = %v, want 1.0", rec["co"])
	}
	if rec["no2"] != 2.0 {
		t.Errorf("no2 = %v, want 2.0", rec["no2"])
	}
	if _, ok := rec["components"]; ok {
		t.Error("components field should be removed")
	}
}

func TestRecordsStripsBookkeepingFields(t *testing.T) {
	records := Records([]bson.M{storedDoc(100, bson.M{"co": 1.0})})
	rec := records[0]

	for _, field := range []string{"_id", "coord", "main", "list", "dt"} {
		if _, ok := rec[field]; ok {
			t.Errorf("field %q should be removed", field)
		}
	}

	if rec["timestamp"] != "2025-04-05 19:10:43" {
		t.Errorf("timestamp = %v, want kept", rec["timestamp"])
	}
	if rec["timestamp_unix"] != int64(100) {
		t.Errorf("timestamp_unix = %v, want 100", rec["timestamp_unix"])
	}
}

func TestRecordsPromotesAQI(t *testing.T) {
	records := Records([]bson.M{storedDoc(100, bson.M{"co": 1.0})})

	if records[0]["aqi"] != int32(2) {
		t.Errorf("aqi = %v, want 2", records[0]["aqi"])
	}
}

func TestRecordsSkipsIncompleteDocuments(t *testing.T) {
	noComponents := storedDoc(100, nil)
	delete(noComponents, "components")

	noTimestamp := storedDoc(200, bson.M{"co": 1.0})
	delete(noTimestamp, "timestamp")

	kept := storedDoc(300, bson.M{"co": 1.0})

	records := Records([]bson.M{noComponents, noTimestamp, kept})
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0]["timestamp_unix"] != int64(300) {
		t.Errorf("kept record timestamp_unix = %v, want 300", records[0]["timestamp_unix"])
	}
}

func TestRecordsPreservesOrder(t *testing.T) {
	docs := []bson.M{
		storedDoc(1, bson.M{"co": 1.0}),
		storedDoc(2, bson.M{"co": 2.0}),
		storedDoc(3, bson.M{"co": 3.0}),
	}

	records := Records(docs)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i, rec := range records {
		if rec["timestamp_unix"] != int64(i+1) {
			t.Errorf("record %d timestamp_unix = %v, want %d", i, rec["timestamp_unix"], i+1)
		}
	}
}

func TestRecordsHandlesDriverDocumentShapes(t *testing.T) {
	// The driver decodes nested documents of a bson.M as bson.D; flattening
	// must accept both shapes.
	doc := bson.M{
		"components":     bson.D{{Key: "co", Value: 240.33}, {Key: "pm2_5", Value: 6.1}},
		"main":           bson.D{{Key: "aqi", Value: int32(3)}},
		"timestamp":      "2025-04-05 19:10:43",
		"timestamp_unix": int64(1743880243),
	}

	records := Records([]bson.M{doc})
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0]["pm2_5"] != 6.1 {
		t.Errorf("pm2_5 = %v, want 6.1", records[0]["pm2_5"])
	}
	if records[0]["aqi"] != int32(3) {
		t.Errorf("aqi = %v, want 3", records[0]["aqi"])
	}
}

func TestRecordsRoundTripComponents(t *testing.T) {
	components := bson.M{"co": 240.33, "no": 0.17, "no2": 13.71, "o3": 68.66, "pm2_5": 6.1}
	records := Records([]bson.M{storedDoc(100, components)})

	rec := records[0]
	for name, want := range components {
		if rec[name] != want {
			t.Errorf("%s = %v, want %v", name, rec[name], want)
		}
	}
}
