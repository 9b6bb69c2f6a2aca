package ingest

import "context"

// CaptionFragment is one raw spoken-word fragment as returned by a
// speech-to-text provider.
type CaptionFragment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// FrameFragment is one raw on-screen text fragment as returned by a frame
// sampling + OCR provider. Frames with no recognized text are allowed; the
// normalizer drops them.
type FrameFragment struct {
	FrameRef   string  `json:"frame_ref"`
	Text       string  `json:"text"`
	Timestamp  float64 `json:"timestamp"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SpeechToTextProvider returns the ordered caption fragments for a video.
type SpeechToTextProvider interface {
	Transcript(ctx context.Context, videoID string) ([]CaptionFragment, error)
}

// FrameOCRProvider returns the ordered on-screen text fragments for a video,
// one per sampled key frame.
type FrameOCRProvider interface {
	FrameText(ctx context.Context, videoID string) ([]FrameFragment, error)
}
