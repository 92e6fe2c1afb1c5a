package session

import (
	"testing"

	"ai-tutoring-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		text     string
		expected []Topic
	}{
		{"", nil},
		{"Let's START the lesson", nil},
		{"ALGEBRA and Photosynthesis", []Topic{TopicMathematics, TopicBiology}},
		{"What is the periodic table?", []Topic{TopicChemistry}},
		{"I like programming and music.", []Topic{TopicComputerScience, TopicMusic}},
		{"computer science", []Topic{TopicScience, TopicComputerScience}},
		{"smart artists", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.text))
		})
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		ua       string
		expected string
	}{
		{"", entity.DeviceTypeUnknown},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", entity.DeviceTypeTablet},
		{"Mozilla/5.0 (Linux; Android 13; SM-X700)", entity.DeviceTypeTablet},
		{"Mozilla/5.0 (Linux; Android 13; Pixel 7) Mobile Safari/537.36", entity.DeviceTypeMobile},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", entity.DeviceTypeMobile},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)", entity.DeviceTypeDesktop},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyDevice(tt.ua), tt.ua)
	}
}

func TestMergeTopics(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, mergeTopics([]string{"A", "B"}, []string{"B", "C", "C"}))
	assert.Equal(t, []string{}, mergeTopics(nil, nil))
}
