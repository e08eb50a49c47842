package handler

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func postForm(t *testing.T, handle gin.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req

	handle(c)
	return w
}

func TestBuildNgramsValidation(t *testing.T) {
	h := NewPipelineHandler(nil) // rejected before the service is reached

	w := postForm(t, h.BuildNgrams, url.Values{})
	assert.Equal(t, 400, w.Code, "missing cell_size")
	assert.Contains(t, w.Body.String(), "cell_size")

	w = postForm(t, h.BuildNgrams, url.Values{"cell_size": {"abc"}})
	assert.Equal(t, 400, w.Code, "non-integer cell_size")

	w = postForm(t, h.BuildNgrams, url.Values{"cell_size": {"200"}})
	assert.Equal(t, 400, w.Code, "missing trajectory file")
	assert.Contains(t, w.Body.String(), "No trajectory file")
}

func TestGenerateValidation(t *testing.T) {
	h := NewPipelineHandler(nil)

	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing num", url.Values{}, "num_trajectories"},
		{"zero num", url.Values{"num_trajectories": {"0"}}, "num_trajectories"},
		{
			"unknown method",
			url.Values{"num_trajectories": {"5"}, "generation_method": {"random_walk"}},
			"generation_method",
		},
		{
			"short length",
			url.Values{
				"num_trajectories":  {"5"},
				"generation_method": {"length_constrained"},
				"trajectory_len":    {"1"},
			},
			"trajectory_len",
		},
		{
			"missing cache",
			url.Values{"num_trajectories": {"5"}, "generation_method": {"point_to_point"}},
			"cache",
		},
	}

	for _, tc := range cases {
		w := postForm(t, h.Generate, tc.form)
		assert.Equal(t, 400, w.Code, tc.name)
		assert.Contains(t, w.Body.String(), tc.want, tc.name)
	}
}

func TestStatsFromCacheBadBody(t *testing.T) {
	h := NewPipelineHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"wrong": true}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.StatsFromCache(c)
	assert.Equal(t, 400, w.Code)
}

func TestMatchBadBody(t *testing.T) {
	h := NewMatchingHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Match(c)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "filename")
}
