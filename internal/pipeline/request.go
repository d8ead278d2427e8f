package pipeline

import (
	"errors"
	"strings"

	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
)

var ErrMissingTopic = errors.New("topic is required")

var ContentTypes = []string{"Blog", "LinkedIn Post", "Tweet Thread", "YouTube Script"}

var Tones = []string{"Professional", "Casual", "Witty", "Formal", "Friendly"}

const (
	MinWords     = 100
	MaxWords     = 1000
	WordStep     = 100
	DefaultWords = 500
)

// Request holds everything collected for one generation. It lives for a
// single run and is never stored.
type Request struct {
	Topic       string
	ContentType string
	Tone        string
	WordCount   int
	Keywords    string
	Goal        string
	URLs        []string
	Humanize    bool
}

// NewRequest returns a request with the form defaults filled in.
func NewRequest(topic string) *Request {
	return &Request{
		Topic:       topic,
		ContentType: ContentTypes[0],
		Tone:        Tones[0],
		WordCount:   DefaultWords,
	}
}

// Normalize trims text fields, fills empty choices with defaults, clamps
// the word count to [MinWords, MaxWords] and drops blank or repeated URLs.
func (r *Request) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Keywords = strings.TrimSpace(r.Keywords)
	r.Goal = strings.TrimSpace(r.Goal)
	r.ContentType = strings.TrimSpace(r.ContentType)
	r.Tone = strings.TrimSpace(r.Tone)

	if r.ContentType == "" {
		r.ContentType = ContentTypes[0]
	}
	if r.Tone == "" {
		r.Tone = Tones[0]
	}

	switch {
	case r.WordCount == 0:
		r.WordCount = DefaultWords
	case r.WordCount < MinWords:
		r.WordCount = MinWords
	case r.WordCount > MaxWords:
		r.WordCount = MaxWords
	}

	var urls []string
	seen := make(map[string]bool)
	for _, u := range r.URLs {
		if u = strings.TrimSpace(u); u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	r.URLs = urls
}

// Validate checks the only hard requirement on the request itself.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrMissingTopic
	}
	return nil
}

// CheckInputs runs the presence checks that must pass before any network
// call: a topic, and a credential when the provider needs one.
func CheckInputs(req *Request, cfg *config.Config) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if cfg.NeedsAPIKey() && strings.TrimSpace(cfg.APIKey) == "" {
		return llm.ErrMissingAPIKey
	}
	return nil
}

// IsMissingInput reports whether err came from CheckInputs.
func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingTopic) || errors.Is(err, llm.ErrMissingAPIKey)
}

// Cycle returns the option after (or before, when step < 0) current.
func Cycle(options []string, current string, step int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(options)
	return options[((idx+step)%n+n)%n]
}
