package protocol

import "time"

// Transcript is a finished ASR result for one utterance.
type Transcript struct {
	UtteranceID string    `json:"utterance_id"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  float64   `json:"confidence,omitempty"`
}

// Answer is a presented assistant answer, tagged with its source.
type Answer struct {
	UtteranceID string    `json:"utterance_id"`
	Text        string    `json:"text"`
	Source      string    `json:"source"` // "knowledge" or "search"
	BrowseURL   string    `json:"browse_url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConfirmRequest announces a pending dangerous command awaiting confirmation.
type ConfirmRequest struct {
	RequestID string    `json:"request_id"`
	CommandID string    `json:"command_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfirmReply carries a single confirm/cancel token keyed by request id.
type ConfirmReply struct {
	RequestID string `json:"request_id"`
	Token     string `json:"token"` // "yes" or "no"
}

// ListeningEvent signals that the wake word fired and the daemon is armed.
type ListeningEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectListening          = "ui.listening"
	SubjectTranscript         = "ui.transcript"
	SubjectAnswer             = "ui.answer"
	SubjectConfirmRequest     = "exec.confirm.request"
	SubjectConfirmReplyPrefix = "exec.confirm.reply"
)

// ConfirmReplySubject returns the per-request reply subject.
func ConfirmReplySubject(requestID string) string {
	return SubjectConfirmReplyPrefix + "." + requestID
}
