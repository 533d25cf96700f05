package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "海边的约定", sanitizeFileName("海边的约定"))
	assert.Equal(t, "海边的约定demo_1", sanitizeFileName("海边的约定 demo_1!"))
	assert.Equal(t, "untitled", sanitizeFileName("...///"))
	assert.Equal(t, "untitled", sanitizeFileName(""))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("lyrics/w1/1_song.txt"))
	assert.Equal(t, "audio/mpeg", contentTypeFor("audio/w1/1_song.mp3"))
	assert.Equal(t, "audio/wav", contentTypeFor("a.wav"))
	assert.Equal(t, "image/jpeg", contentTypeFor("cover.jpeg"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("noext"))
}
