package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// Translator is the external collaborator boundary for cross-language
// text translation, symmetric with ws.Transcriber/ws.Synthesizer. A nil
// Translator (or a Translate error) falls back to returning the original
// text unchanged, matching the tool/retrieval degrade-on-failure policy.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// greetings holds a small built-in per-language greeting table, keyed by
// ISO 639-1-ish language code. Unknown languages fall back to English.
var greetings = map[string]string{
	"en": "Hello! I'm your gold loan assistant. How can I help you today?",
	"hi": "नमस्ते! मैं आपका गोल्ड लोन सहायक हूं। आज मैं आपकी कैसे मदद कर सकता हूं?",
	"ta": "வணக்கம்! நான் உங்கள் தங்க கடன் உதவியாளர். இன்று நான் உங்களுக்கு எப்படி உதவ முடியும்?",
	"te": "నమస్కారం! నేను మీ గోల్డ్ లోన్ అసిస్టెంట్. ఈ రోజు నేను మీకు ఎలా సహాయం చేయగలను?",
	"kn": "ನಮಸ್ಕಾರ! ನಾನು ನಿಮ್ಮ ಚಿನ್ನದ ಸಾಲ ಸಹಾಯಕ. ಇಂದು ನಾನು ನಿಮಗೆ ಹೇಗೆ ಸಹಾಯ ಮಾಡಬಹುದು?",
	"ml": "നമസ്കാരം! ഞാൻ നിങ്ങളുടെ സ്വർണ്ണ വായ്പ സഹായി ആണ്. ഇന്ന് ഞാൻ നിങ്ങളെ എങ്ങനെ സഹായിക്കാം?",
}

const defaultGreetingEnglish = "Hello! I'm your gold loan assistant. How can I help you today?"

func greetingFor(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if g, ok := greetings[key]; ok {
		return g
	}
	return defaultGreetingEnglish
}

type pttProcessRequest struct {
	Audio       string `json:"audio" binding:"required"`
	AudioFormat string `json:"audio_format" binding:"required"`
	Language    string `json:"language"`
}

type pttMetrics struct {
	SttMs   int64 `json:"stt_ms"`
	LlmMs   int64 `json:"llm_ms"`
	TtsMs   int64 `json:"tts_ms"`
	TotalMs int64 `json:"total_ms"`
}

type pttProcessResponse struct {
	UserText          string     `json:"user_text"`
	UserTextCorrected string     `json:"user_text_corrected,omitempty"`
	AssistantText     string     `json:"assistant_text"`
	AudioResponse     string     `json:"audio_response,omitempty"`
	AudioFormat       string     `json:"audio_format,omitempty"`
	Metrics           pttMetrics `json:"metrics"`
	Phase             string     `json:"phase"`
}

// ProcessPTT handles POST /api/ptt/process: a stateless turn over a
// throwaway session, decoding audio, transcribing, running the full
// engine pipeline, and optionally synthesizing a spoken reply. The
// session is created and discarded within this one request; nothing
// about it persists.
func (s *Server) ProcessPTT(c *gin.Context) {
	var req pttProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if s.transcriber == nil {
		s.abortErr(c, voxerr.New(voxerr.BackendUnavailable, "httpapi.ProcessPTT", nil))
		return
	}

	start := time.Now()
	ctx := c.Request.Context()

	rawAudio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		badRequest(c, "invalid base64 audio")
		return
	}

	pcm, err := decodeAudio(ctx, rawAudio, req.AudioFormat)
	if err != nil {
		s.abortErr(c, err)
		return
	}

	sttStart := time.Now()
	userText, _, err := s.transcriber.Transcribe(ctx, pcm, 16000)
	sttMs := time.Since(sttStart).Milliseconds()
	if err != nil {
		s.abortErr(c, voxerr.New(voxerr.BackendUnavailable, "httpapi.ProcessPTT", err))
		return
	}
	if strings.TrimSpace(userText) == "" {
		c.JSON(http.StatusOK, pttProcessResponse{
			AssistantText: noSpeechMessage(req.Language),
			Metrics:       pttMetrics{SttMs: sttMs, TotalMs: time.Since(start).Milliseconds()},
			Phase:         "complete",
		})
		return
	}

	sess, err := s.sessions.Create(ctx, req.Language)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	defer func() { _ = s.sessions.Delete(context.WithoutCancel(ctx), sess.ID) }()

	llmStart := time.Now()
	reply, err := s.engine.ProcessTurn(ctx, sess, userText, nil)
	llmMs := time.Since(llmStart).Milliseconds()
	if err != nil {
		s.abortErr(c, err)
		return
	}

	resp := pttProcessResponse{
		UserText:      userText,
		AssistantText: reply,
		Phase:         "complete",
	}

	if s.synthesizer != nil {
		ttsStart := time.Now()
		audio, err := s.synthesizer.Synthesize(ctx, reply)
		if err != nil {
			s.log.Warn().Err(err).Msg("ptt speech synthesis failed")
		} else {
			resp.AudioResponse = base64.StdEncoding.EncodeToString(audio)
			resp.AudioFormat = "pcm"
		}
		resp.Metrics.TtsMs = time.Since(ttsStart).Milliseconds()
	}

	resp.Metrics.SttMs = sttMs
	resp.Metrics.LlmMs = llmMs
	resp.Metrics.TotalMs = time.Since(start).Milliseconds()

	c.JSON(http.StatusOK, resp)
}

func noSpeechMessage(language string) string {
	if strings.ToLower(strings.TrimSpace(language)) == "hi" {
		return "मुझे कुछ सुनाई नहीं दिया। कृपया फिर से बोलें।"
	}
	return "I didn't hear anything. Please speak again."
}

type greetingRequest struct {
	Language string `json:"language"`
}

type greetingResponse struct {
	Greeting        string `json:"greeting"`
	GreetingEnglish string `json:"greeting_english"`
	Language        string `json:"language"`
}

// Greeting handles POST /api/ptt/greeting.
func (s *Server) Greeting(c *gin.Context) {
	var req greetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, greetingResponse{
		Greeting:        greetingFor(req.Language),
		GreetingEnglish: defaultGreetingEnglish,
		Language:        req.Language,
	})
}

type translateMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Role string `json:"role"`
}

type translateRequest struct {
	Messages       []translateMessage `json:"messages" binding:"required"`
	TargetLanguage string              `json:"target_language" binding:"required"`
	SourceLanguage string              `json:"source_language"`
}

type translatedMessage struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Original string `json:"original"`
	Role     string `json:"role"`
}

type translateResponse struct {
	Messages       []translatedMessage `json:"messages"`
	TargetLanguage string              `json:"target_language"`
	SourceLanguage string              `json:"source_language"`
}

// Translate handles POST /api/ptt/translate. Every message is translated
// independently; a per-message translation failure falls back to the
// original text rather than failing the whole batch.
func (s *Server) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sourceLang := req.SourceLanguage
	if sourceLang == "" {
		sourceLang = "en"
	}

	out := make([]translatedMessage, 0, len(req.Messages))
	if sourceLang == req.TargetLanguage || s.translator == nil {
		for _, m := range req.Messages {
			out = append(out, translatedMessage{ID: m.ID, Text: m.Text, Original: m.Text, Role: m.Role})
		}
		c.JSON(http.StatusOK, translateResponse{Messages: out, TargetLanguage: req.TargetLanguage, SourceLanguage: sourceLang})
		return
	}

	ctx := c.Request.Context()
	for _, m := range req.Messages {
		text, err := s.translator.Translate(ctx, m.Text, sourceLang, req.TargetLanguage)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", m.ID).Msg("translation failed, using original")
			text = m.Text
		}
		out = append(out, translatedMessage{ID: m.ID, Text: text, Original: m.Text, Role: m.Role})
	}

	c.JSON(http.StatusOK, translateResponse{Messages: out, TargetLanguage: req.TargetLanguage, SourceLanguage: sourceLang})
}
