package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Errors.
var (
	ErrNoSecret  = errors.New("flash: secret required")
	ErrBadSecret = errors.New("flash: secret must be 32+ bytes")
	ErrBadSig    = errors.New("flash: invalid signature")
)

// Level classifies a message for presentation.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is one user-facing notification.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Info builds an informational message.
func Info(text string) Message { return Message{Level: LevelInfo, Text: text} }

// Success builds a success message.
func Success(text string) Message { return Message{Level: LevelSuccess, Text: text} }

// Error builds an error message.
func Error(text string) Message { return Message{Level: LevelError, Text: text} }

// DefaultCookieName holds the pending messages between requests.
const DefaultCookieName = "authfold_flash"

// Stack stores flash messages in a signed cookie so they survive the
// redirect after a form post. Messages are read once and then gone.
type Stack struct {
	secret     []byte
	cookieName string
	path       string
	secure     bool
	sameSite   http.SameSite
}

// Option configures the Stack.
type Option func(*Stack)

// WithCookieName sets the cookie name. Default: authfold_flash.
func WithCookieName(name string) Option {
	return func(s *Stack) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithPath sets the cookie path. Default: /.
func WithPath(path string) Option {
	return func(s *Stack) {
		if path != "" {
			s.path = path
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(s *Stack) {
		s.secure = secure
	}
}

// WithSameSite sets the SameSite attribute. Default: Lax.
func WithSameSite(ss http.SameSite) Option {
	return func(s *Stack) {
		s.sameSite = ss
	}
}

// New creates a Stack. The secret signs the cookie payload and must be
// at least 32 bytes; a forged cookie fails verification and reads as
// no messages.
func New(secret string, opts ...Option) (*Stack, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}

	s := &Stack{
		secret:     []byte(secret),
		cookieName: DefaultCookieName,
		path:       "/",
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add appends a message to the pending stack. Messages added earlier in
// this response and valid messages from the request cookie are preserved;
// a tampered cookie is discarded and the stack starts over with just this
// message.
func (s *Stack) Add(w http.ResponseWriter, r *http.Request, msg Message) error {
	msgs, err := s.pending(w, r)
	if err != nil && !errors.Is(err, http.ErrNoCookie) && !errors.Is(err, ErrBadSig) {
		return err
	}
	return s.write(w, append(msgs, msg))
}

// Pop returns all pending messages and clears the cookie. A missing or
// tampered cookie yields an empty slice, never an error the caller has
// to branch on.
func (s *Stack) Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs, err := s.pending(w, r)
	if err != nil {
		return nil
	}
	if len(msgs) > 0 {
		s.delete(w)
	}
	return msgs
}

// pending returns the stack as this response would deliver it: a cookie
// written earlier in the same request cycle wins over the one the request
// carried in.
func (s *Stack) pending(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	for _, v := range w.Header().Values("Set-Cookie") {
		c, err := http.ParseSetCookie(v)
		if err != nil || c.Name != s.cookieName {
			continue
		}
		if c.MaxAge < 0 {
			return nil, nil
		}
		return s.decode(c.Value)
	}
	return s.read(r)
}

func (s *Stack) read(r *http.Request) ([]Message, error) {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, err
	}
	return s.decode(c.Value)
}

func (s *Stack) decode(value string) ([]Message, error) {
	// Format: base64(json).base64(signature)
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return nil, ErrBadSig
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrBadSig
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return nil, ErrBadSig
	}

	var msgs []Message
	if err := json.Unmarshal(payload, &msgs); err != nil {
		return nil, ErrBadSig
	}
	return msgs, nil
}

func (s *Stack) write(w http.ResponseWriter, msgs []Message) error {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	value := base64.RawURLEncoding.EncodeToString(payload) +
		"." + base64.RawURLEncoding.EncodeToString(s.sign(payload))

	s.setCookie(w, s.cookie(value, 0))
	return nil
}

func (s *Stack) delete(w http.ResponseWriter) {
	s.setCookie(w, s.cookie("", -1))
}

// setCookie replaces any cookie with the same name already queued on the
// response, so repeated writes in one cycle produce a single Set-Cookie.
func (s *Stack) setCookie(w http.ResponseWriter, c *http.Cookie) {
	header := w.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if prev, err := http.ParseSetCookie(v); err == nil && prev.Name == s.cookieName {
			continue
		}
		kept = append(kept, v)
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	http.SetCookie(w, c)
}

func (s *Stack) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (s *Stack) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     s.path,
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: s.sameSite,
	}
}
