package model

import "testing"

func TestCanTransitionTo_Forward(t *testing.T) {
	cases := []struct {
		from, to ArtifactStatus
		want     bool
	}{
		{StatusUploaded, StatusProcessing, true},
		{StatusUploaded, StatusProcessed, true},
		{StatusUploaded, StatusFailed, true},
		{StatusProcessing, StatusProcessed, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessed, StatusUploaded, false},
		{StatusProcessed, StatusProcessing, false},
		{StatusFailed, StatusProcessing, false},
		{StatusDeleted, StatusUploaded, false},
		{StatusDeleted, StatusProcessed, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s→%s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanTransitionTo_DeletedReachableFromAnyLiveStatus(t *testing.T) {
	for _, from := range []ArtifactStatus{StatusUploaded, StatusProcessing, StatusProcessed, StatusFailed} {
		if !from.CanTransitionTo(StatusDeleted) {
			t.Errorf("%s→deleted should be allowed", from)
		}
	}
}

func TestCanTransitionTo_SameStatusIsNoOp(t *testing.T) {
	for _, s := range []ArtifactStatus{StatusUploaded, StatusProcessing, StatusProcessed, StatusFailed, StatusDeleted} {
		if !s.CanTransitionTo(s) {
			t.Errorf("%s→%s should be allowed for idempotent redeliveries", s, s)
		}
	}
}

func TestMetadataMerge_KeepsUnspecifiedFields(t *testing.T) {
	m := Metadata{SubjectName: "Jane", LessonDate: "2024-07-15", ExtractedFromFilename: true}
	m.Merge(Metadata{DurationSeconds: 42.5, Codec: "mp3", BitrateKbps: 128})

	if m.SubjectName != "Jane" || m.LessonDate != "2024-07-15" || !m.ExtractedFromFilename {
		t.Errorf("merge clobbered filename fields: %+v", m)
	}
	if m.DurationSeconds != 42.5 || m.Codec != "mp3" || m.BitrateKbps != 128 {
		t.Errorf("merge did not apply patch fields: %+v", m)
	}
}

func TestMetadataMerge_OverwritesSpecifiedFields(t *testing.T) {
	m := Metadata{Codec: "aac", BitrateKbps: 256}
	m.Merge(Metadata{Codec: "mp3"})

	if m.Codec != "mp3" {
		t.Errorf("expected codec overwritten, got %q", m.Codec)
	}
	if m.BitrateKbps != 256 {
		t.Errorf("expected bitrate kept, got %d", m.BitrateKbps)
	}
}
