// Package gemini implements [edubot.Responder] with the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating a session's recent
// messages into Gemini contents and the generated candidate back into a
// reply.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
