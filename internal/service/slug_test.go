package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Intro to Go", "intro-to-go"},
		{"  Café  Déjà Vu  ", "cafe-deja-vu"},
		{"DevOps: CI/CD & Docker!", "devops-cicd-docker"},
		{"multiple --- dashes", "multiple-dashes"},
		{"___", ""},
		{"数据结构", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
}

func TestUniqueSlug(t *testing.T) {
	assert.Equal(t, "intro", UniqueSlug("intro", nil))
	assert.Equal(t, "intro-1", UniqueSlug("intro", []string{"intro"}))
	assert.Equal(t, "intro-2", UniqueSlug("intro", []string{"intro", "intro-1"}))
	assert.Equal(t, "course", UniqueSlug("", nil))
	assert.Equal(t, "course-1", UniqueSlug("", []string{"course"}))
}
