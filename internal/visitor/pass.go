package visitor

import (
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPass is returned when a scanned payload is not a recognizable gate pass.
var ErrInvalidPass = errors.New("invalid gate pass")

var passTokenRE = regexp.MustCompile(`^[A-Za-z0-9_-]{4,64}$`)

// Pass is a decoded gate pass from a QR scan.
type Pass struct {
	PassID      string `json:"passId"`
	CommunityID string `json:"communityId,omitempty"`
}

// ParsePass decodes a QR payload. Three shapes are accepted: a JSON object
// carrying passId (or visitorId), a URL with a pass or code query parameter,
// and a bare pass token.
func ParsePass(payload string) (Pass, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Pass{}, ErrInvalidPass
	}

	switch {
	case strings.HasPrefix(payload, "{"):
		return parseJSONPass(payload)
	case strings.Contains(payload, "://"):
		return parseURLPass(payload)
	default:
		token, err := normalizeToken(payload)
		if err != nil {
			return Pass{}, err
		}
		return Pass{PassID: token}, nil
	}
}

func parseJSONPass(payload string) (Pass, error) {
	var raw struct {
		PassID      string `json:"passId"`
		VisitorID   string `json:"visitorId"`
		CommunityID string `json:"communityId"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Pass{}, ErrInvalidPass
	}

	id := raw.PassID
	if id == "" {
		id = raw.VisitorID
	}
	token, err := normalizeToken(id)
	if err != nil {
		return Pass{}, err
	}
	return Pass{PassID: token, CommunityID: strings.TrimSpace(raw.CommunityID)}, nil
}

func parseURLPass(payload string) (Pass, error) {
	u, err := url.Parse(payload)
	if err != nil {
		return Pass{}, ErrInvalidPass
	}

	q := u.Query()
	id := q.Get("pass")
	if id == "" {
		id = q.Get("code")
	}
	token, err := normalizeToken(id)
	if err != nil {
		return Pass{}, err
	}
	return Pass{PassID: token, CommunityID: q.Get("community")}, nil
}

// normalizeToken validates a pass token. UUID tokens are returned in
// canonical lower-case form.
func normalizeToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if id, err := uuid.Parse(s); err == nil {
		return id.String(), nil
	}
	if !passTokenRE.MatchString(s) {
		return "", ErrInvalidPass
	}
	return s, nil
}
