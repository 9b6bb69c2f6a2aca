//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoData struct {
	VideoID       string `json:"video_id"`
	CaptionUnits  int    `json:"caption_units"`
	ScreenUnits   int    `json:"screen_units"`
	DegradedUnits int    `json:"degraded_units"`
	Dropped       int    `json:"dropped"`
	Deduplicated  int    `json:"deduplicated"`
}

type askData struct {
	Answer    string `json:"answer"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind"`
	Citations []struct {
		Source string  `json:"source"`
		Start  float64 `json:"start"`
		End    float64 `json:"end"`
	} `json:"citations"`
}

func ingestRequest(videoID string) map[string]interface{} {
	return map[string]interface{}{
		"video_id": videoID,
		"captions": []map[string]interface{}{
			{"text": "Today we derive Ohm's law from first principles", "start": 5.0, "end": 9.5, "confidence": 0.96},
			{"text": "voltage equals current times resistance", "start": 15.0, "end": 22.0, "confidence": 0.92},
			{"text": "now let us look at a worked example", "start": 40.0, "end": 44.0, "confidence": 0.9},
		},
		"frames": []map[string]interface{}{
			{"frame_ref": "frame_0004", "text": "Ohm's Law: V = IR", "timestamp": 10.0, "confidence": 0.99},
			{"frame_ref": "frame_0005", "text": "Ohm's Law: V = IR", "timestamp": 12.0, "confidence": 0.97},
		},
	}
}

func TestE2E_IngestAndAsk(t *testing.T) {
	env := SetupE2EEnv(t)

	t.Run("ingest builds the knowledge base", func(t *testing.T) {
		status, resp, err := env.Post("/videos", ingestRequest("physics-101"))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, status)

		var video videoData
		require.NoError(t, json.Unmarshal(resp.Data, &video))
		assert.Equal(t, "physics-101", video.VideoID)
		assert.Equal(t, 3, video.CaptionUnits)
		// The duplicate V = IR frame collapses into one screen unit.
		assert.Equal(t, 1, video.ScreenUnits)
		assert.Equal(t, 1, video.Deduplicated)
		assert.Zero(t, video.DegradedUnits)
	})

	t.Run("ask answers with timeline citations", func(t *testing.T) {
		status, resp, err := env.Post("/videos/physics-101/ask", map[string]interface{}{
			"question": "What is Ohm's law?",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result askData
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "ok", result.Status)
		assert.NotEmpty(t, result.Answer)
		require.NotEmpty(t, result.Citations)

		// Citations are ordered by timeline position.
		for i := 1; i < len(result.Citations); i++ {
			assert.LessOrEqual(t, result.Citations[i-1].Start, result.Citations[i].Start)
		}
		assert.Contains(t, env.Provider.LastUserPrompt(), "What is Ohm's law?")
	})

	t.Run("time window restricts retrieval", func(t *testing.T) {
		status, resp, err := env.Post("/videos/physics-101/ask", map[string]interface{}{
			"question": "What is Ohm's law?",
			"from":     500.0,
			"to":       600.0,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result askData
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "no_relevant_context", result.Status)
		assert.Empty(t, result.Answer)
	})

	t.Run("unknown video returns 404", func(t *testing.T) {
		status, resp, err := env.Post("/videos/never-ingested/ask", map[string]interface{}{
			"question": "Anything?",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		status, _, err := env.Post("/videos/physics-101/ask", map[string]interface{}{
			"question": "   ",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestE2E_ProviderFailures(t *testing.T) {
	env := SetupE2EEnv(t)

	t.Run("ingest degrades without embeddings", func(t *testing.T) {
		env.Provider.EmbedDown = true

		status, resp, err := env.Post("/videos", ingestRequest("chem-201"))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, status)

		var video videoData
		require.NoError(t, json.Unmarshal(resp.Data, &video))
		assert.Equal(t, video.CaptionUnits+video.ScreenUnits, video.DegradedUnits)
	})

	t.Run("degraded video still answers lexically", func(t *testing.T) {
		status, resp, err := env.Post("/videos/chem-201/ask", map[string]interface{}{
			"question": "What is Ohm's law?",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result askData
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "ok", result.Status)
		assert.NotEmpty(t, result.Citations)
	})

	t.Run("generation failure reports failed status with citations", func(t *testing.T) {
		env.Provider.GenerateDown = true

		status, resp, err := env.Post("/videos/chem-201/ask", map[string]interface{}{
			"question": "What is Ohm's law?",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result askData
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "failed", result.Status)
		assert.Equal(t, "PROVIDER_UNAVAILABLE", result.ErrorKind)
		assert.Empty(t, result.Answer)
		assert.NotEmpty(t, result.Citations)

		env.Provider.GenerateDown = false
	})
}

func TestE2E_VideoLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)

	for _, id := range []string{"lecture-01", "lecture-02", "lecture-03"} {
		status, _, err := env.Post("/videos", ingestRequest(id))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, status)
	}

	t.Run("list paginates newest first", func(t *testing.T) {
		status, resp, err := env.Get("/videos?limit=2")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var page struct {
			Items []struct {
				VideoID string `json:"video_id"`
			} `json:"items"`
			Cursor  string `json:"cursor"`
			HasMore bool   `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasMore)
		require.NotEmpty(t, page.Cursor)

		status, resp, err = env.Get("/videos?limit=2&cursor=" + url.QueryEscape(page.Cursor))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page.Items, 1)
		assert.False(t, page.HasMore)
	})

	t.Run("reingest replaces wholesale", func(t *testing.T) {
		req := ingestRequest("lecture-01")
		req["captions"] = []map[string]interface{}{
			{"text": "a completely new transcript", "start": 1.0, "end": 3.0},
		}
		req["frames"] = []map[string]interface{}{}

		status, resp, err := env.Post("/videos", req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, status)

		var video videoData
		require.NoError(t, json.Unmarshal(resp.Data, &video))
		assert.Equal(t, 1, video.CaptionUnits)
		assert.Zero(t, video.ScreenUnits)
	})

	t.Run("delete removes the knowledge base", func(t *testing.T) {
		status, _, err := env.Delete("/videos/lecture-02")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)

		status, _, err = env.Get("/videos/lecture-02")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)

		status, _, err = env.Delete("/videos/lecture-02")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
