package models

import "time"

// TimestampLayout is the human-readable rendering used for derived timestamps,
// both on live samples and on cleaned historical rows.
const TimestampLayout = "2006-01-02 15:04:05"

// Coord is the coordinate pair attached to every live sample.
type Coord struct {
	Lon float64 `bson:"lon" json:"lon"`
	Lat float64 `bson:"lat" json:"lat"`
}

// AirQualityIndex wraps the discrete index returned by the measurement endpoint.
type AirQualityIndex struct {
	AQI int `bson:"aqi" json:"aqi"`
}

// PollutionEntry is one measurement entry from the endpoint's list.
type PollutionEntry struct {
	Main       AirQualityIndex    `bson:"main" json:"main"`
	Components map[string]float64 `bson:"components" json:"components"`
	Dt         int64              `bson:"dt" json:"dt"`
}

// AirPollutionResponse models the JSON payload returned by the air pollution endpoint.
type AirPollutionResponse struct {
	Coord Coord            `json:"coord"`
	List  []PollutionEntry `json:"list"`
}

// LiveSample is one stored snapshot of live measurements: the single entry of
// an endpoint response enriched with its source coordinate and two derived
// timestamp fields. TimestampUnix is the dedup key; no two stored samples may
// share it.
type LiveSample struct {
	Coord         Coord              `bson:"coord" json:"coord"`
	Main          AirQualityIndex    `bson:"main" json:"main"`
	Components    map[string]float64 `bson:"components" json:"components"`
	Dt            int64              `bson:"dt" json:"dt"`
	TimestampUnix int64              `bson:"timestamp_unix" json:"timestamp_unix"`
	Timestamp     string             `bson:"timestamp" json:"timestamp"`
}

// HistoricalRecord is one cleaned row of the historical dataset, keyed by its
// derived timestamp. Readings are keyed by normalized column name; a nil value
// is the explicit missing marker (the source file's -200 sentinel never
// survives into a record).
type HistoricalRecord struct {
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	Readings  map[string]*float64 `bson:",inline" json:"readings"`
}

// FlattenedLiveRecord is a stored live sample projected into a flat document:
// components expanded to sibling fields, wrapper and bookkeeping fields removed.
// Derived and read-only; never written back to the sink.
type FlattenedLiveRecord map[string]any

// UTCTimestamp renders an epoch timestamp as a human-readable UTC string.
func UTCTimestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(TimestampLayout)
}
