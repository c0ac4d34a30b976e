package domain

import "time"

// NextTrack is a display snapshot of the upcoming queued track.
type NextTrack struct {
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
	ImageURL   string `json:"image_url,omitempty"`
}

// PlaybackState is published by the host and overwritten wholesale on every
// publish tick. Pos is the position in milliseconds at wall-clock TS.
type PlaybackState struct {
	URI       string     `json:"uri"`
	Name      string     `json:"name"`
	Pos       int64      `json:"pos"`
	Playing   bool       `json:"playing"`
	TS        int64      `json:"ts"`
	NextTrack *NextTrack `json:"nextTrack,omitempty"`
}

// ExpectedPos extrapolates the position to the given wall-clock time.
// Extrapolation is unconditional; the Playing flag only gates whether the
// subscriber issues transport commands.
func (p *PlaybackState) ExpectedPos(now time.Time) int64 {
	return p.Pos + (now.UnixMilli() - p.TS)
}
