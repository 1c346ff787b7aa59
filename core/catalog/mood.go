package catalog

import "strings"

// MoodFromTags derives a mood label from free-form source tags.
func MoodFromTags(tags string) string {
	if tags == "" {
		return "energetic"
	}
	tagString := strings.ToLower(tags)
	switch {
	case strings.Contains(tagString, "happy") || strings.Contains(tagString, "joyful"):
		return "happy"
	case strings.Contains(tagString, "sad") || strings.Contains(tagString, "melancholy"):
		return "sad"
	case strings.Contains(tagString, "calm") || strings.Contains(tagString, "peaceful"):
		return "calm"
	case strings.Contains(tagString, "romantic") || strings.Contains(tagString, "love"):
		return "romantic"
	case strings.Contains(tagString, "focus") || strings.Contains(tagString, "study"):
		return "focused"
	default:
		return "energetic"
	}
}
