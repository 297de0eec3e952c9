package speech

import (
	"context"
	"errors"
)

// ErrUnavailable means the recognition service could not be reached or
// refused the request; the caller may try a fallback engine.
var ErrUnavailable = errors.New("recognition service unavailable")

// ErrUnintelligible means the service answered but could not make out any
// speech in the audio. No fallback is attempted for this case.
var ErrUnintelligible = errors.New("could not understand audio")

// Recognizer transcribes one finished utterance. Audio is a complete WAV
// buffer (16 kHz mono s16le payload).
type Recognizer interface {
	Recognize(ctx context.Context, wav []byte, language string) (string, error)
}
