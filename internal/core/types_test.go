package core

import "testing"

func TestSongFileName(t *testing.T) {
	tests := []struct {
		name     string
		song     Song
		expected string
	}{
		{
			"single artist",
			Song{Name: "Hey Jude", Artists: []string{"The Beatles"}},
			"The Beatles - Hey Jude",
		},
		{
			"multiple artists",
			Song{Name: "Song", Artists: []string{"One", "Two"}},
			"One, Two - Song",
		},
		{
			"later artist already in the name is not repeated",
			Song{Name: "Collab (with Guest)", Artists: []string{"Main", "Guest"}},
			"Main - Collab (with Guest)",
		},
		{
			"first artist kept even when in the name",
			Song{Name: "Main Theme", Artists: []string{"Main"}},
			"Main - Main Theme",
		},
		{
			"invalid characters stripped",
			Song{Name: "What/Is*This?", Artists: []string{"A:B"}},
			"AB - WhatIsThis",
		},
		{
			"double quotes become single",
			Song{Name: `The "Best" Song`, Artists: []string{"A"}},
			"A - The 'Best' Song",
		},
		{
			"no artists",
			Song{Name: "Orphan"},
			" - Orphan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.song.FileName(); got != tt.expected {
				t.Errorf("FileName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSongFileNameStable(t *testing.T) {
	song := Song{Name: "Track", Artists: []string{"A", "B"}}

	first := song.FileName()
	song.SetAudioLink("https://youtube.com/watch?v=1")
	song.Lyrics = "la la la"

	if got := song.FileName(); got != first {
		t.Errorf("FileName changed after mutation: %q vs %q", got, first)
	}
}
