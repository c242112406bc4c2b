package preview

import (
	"fmt"
	"regexp"
)

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

const youtubeIDLength = 11

// YouTubeID extracts the video ID from short-link, embed and watch URLs.
func YouTubeID(link string) (string, bool) {
	match := youtubeIDPattern.FindStringSubmatch(link)
	if match == nil || len(match[2]) != youtubeIDLength {
		return "", false
	}
	return match[2], true
}

func YouTubeThumbnail(link string) (string, bool) {
	id, ok := YouTubeID(link)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id), true
}
