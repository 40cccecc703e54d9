package daemon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hypersql/docpub/internal/trigger"
)

// pushPayload is the subset of a GitHub-style push payload we consume.
type pushPayload struct {
	Ref        string `json:"ref"`
	After      string `json:"after"`
	Repository struct {
		Owner struct {
			Login string `json:"login"`
			Name  string `json:"name"`
		} `json:"owner"`
	} `json:"repository"`
}

// prPayload is the subset of a pull_request payload we consume.
type prPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Head struct {
			Ref  string `json:"ref"`
			SHA  string `json:"sha"`
			Repo struct {
				Owner struct {
					Login string `json:"login"`
				} `json:"owner"`
			} `json:"repo"`
		} `json:"head"`
	} `json:"pull_request"`
}

// parseWebhook maps a webhook delivery onto a trigger event.
// Unhandled event types return (zero, false, nil) and are acknowledged
// without enqueueing anything.
func parseWebhook(eventType string, body []byte) (trigger.Event, bool, error) {
	switch eventType {
	case "push":
		var p pushPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return trigger.Event{}, false, fmt.Errorf("invalid push payload: %w", err)
		}
		// Tag pushes carry refs/tags/ refs; they never match a source branch.
		owner := p.Repository.Owner.Login
		if owner == "" {
			owner = p.Repository.Owner.Name
		}
		return trigger.Event{
			Kind:       trigger.KindPush,
			Owner:      owner,
			Ref:        p.Ref,
			Branch:     trigger.BranchFromRef(p.Ref),
			Commit:     p.After,
			ReceivedAt: time.Now(),
		}, true, nil

	case "pull_request":
		var p prPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return trigger.Event{}, false, fmt.Errorf("invalid pull_request payload: %w", err)
		}
		switch p.Action {
		case "opened", "synchronize", "reopened":
		default:
			return trigger.Event{}, false, nil
		}
		return trigger.Event{
			Kind:       trigger.KindPullRequest,
			Owner:      p.PullRequest.Head.Repo.Owner.Login,
			Branch:     p.PullRequest.Head.Ref,
			Commit:     p.PullRequest.Head.SHA,
			ReceivedAt: time.Now(),
		}, true, nil

	case "ping":
		return trigger.Event{}, false, nil

	default:
		return trigger.Event{}, false, nil
	}
}

// validateSignature checks a GitHub-style sha256 HMAC signature header
// against the shared secret. An empty secret disables validation.
func validateSignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	expected := strings.TrimPrefix(signature, "sha256=")
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	calc := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(calc))
}
