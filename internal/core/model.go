package core

import (
	"time"
)

// Label is the outcome of classifying one message under one model.
type Label string

const (
	// LabelSpam marks a message the model flagged as spam.
	LabelSpam Label = "Spam"
	// LabelHam marks a message the model considers legitimate.
	LabelHam Label = "Ham"
	// LabelError marks a (message, model) pair whose inference failed.
	// It never propagates to other models or other messages.
	LabelError Label = "Error"
)

// EmailMessage is one fetched mailbox message. It is constructed once per
// fetch cycle from the raw protocol bytes and never persisted.
type EmailMessage struct {
	// UID is the mailbox-assigned identifier, unique within a session.
	UID uint32
	// Sender and Subject are MIME-decoded and HTML-escaped.
	Sender  string
	Subject string
	// ReceivedAt is the parsed Date header. Zero when the header was
	// missing or unparsable.
	ReceivedAt time.Time
	// BodyFull is the cleaned plain text body with HTML stripped.
	BodyFull string
	// BodyPreview is the first 300 characters of BodyFull, ellipsis-suffixed
	// when truncated, HTML-escaped.
	BodyPreview string
}

// FeatureVector holds the four numeric text statistics fed to the
// feature scaler. The field order is the column order the scaler was
// fitted with and must not change.
type FeatureVector struct {
	NumChar            int
	NumWord            int
	NumSentence        int
	NumWordsAfterClean int
}

// Values returns the features in their fixed column order.
func (f FeatureVector) Values() [4]float64 {
	return [4]float64{
		float64(f.NumChar),
		float64(f.NumWord),
		float64(f.NumSentence),
		float64(f.NumWordsAfterClean),
	}
}
