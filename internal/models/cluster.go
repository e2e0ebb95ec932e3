package models

// ClusterGroup is a query-time grouping of near-identical points returned by
// radius searches. Members keeps the payloads in the order they were merged;
// Coord is the representative coordinate the group was keyed by and never
// moves after the group is created.
type ClusterGroup struct {
	Members []string    `json:"members"`
	Coord   Coordinates `json:"coord"`
}

// RadiusHit is one raw point returned by a day bucket's radius search:
// the stored payload and the coordinate it was indexed at.
type RadiusHit struct {
	Member string
	Coord  Coordinates
}

// ScoredEntry is one member of a frequency counter together with its
// accumulated hit count, as returned by the top-N and hit-map reads.
type ScoredEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}
