package catalog

import "testing"

func TestMoodFromTags(t *testing.T) {
	tests := []struct {
		tags string
		want string
	}{
		{"happy summer pop", "happy"},
		{"joyful", "happy"},
		{"sad piano", "sad"},
		{"melancholy strings", "sad"},
		{"calm ambient", "calm"},
		{"peaceful morning", "calm"},
		{"romantic ballad", "romantic"},
		{"love song", "romantic"},
		{"focus deep work", "focused"},
		{"study beats", "focused"},
		{"hard rock", "energetic"},
		{"", "energetic"},
	}

	for _, tt := range tests {
		if got := MoodFromTags(tt.tags); got != tt.want {
			t.Errorf("MoodFromTags(%q) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}
