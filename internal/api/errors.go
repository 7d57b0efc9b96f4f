package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"

	"github.com/erazemk/menjava/internal/model"
)

// errorBody is the backend's error envelope. Some endpoints use "message",
// others "error"; a conflict may carry the current item.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Item    json.RawMessage `json:"item"`
}

// decodeError turns a non-2xx reply into a RemoteError.
func decodeError(status int, contentType string, body []byte) *model.RemoteError {
	remote := &model.RemoteError{Status: status}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return remote
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/plain" {
		remote.Message = firstLine(string(body))
		return remote
	}

	var env errorBody
	if err := json.Unmarshal(body, &env); err != nil {
		return remote
	}
	remote.Message = env.Message
	if remote.Message == "" {
		remote.Message = env.Error
	}

	// The item comes either nested or as the whole body.
	if len(env.Item) > 0 && !bytes.Equal(env.Item, []byte("null")) {
		if item, err := model.Normalize(env.Item); err == nil {
			remote.Item = item
		}
	} else if hasKey(body, "id") {
		if item, err := model.Normalize(body); err == nil {
			remote.Item = item
		}
	}
	return remote
}

// decodeOptionalItem reads a mutation reply: an item record, a wrapper with an
// "item" field, or nothing useful (nil, nil).
func decodeOptionalItem(body []byte) (*model.Item, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, nil
	}
	if hasKey(body, "id") {
		return model.Normalize(body)
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Item) > 0 && !bytes.Equal(wrapper.Item, []byte("null")) {
		return model.Normalize(wrapper.Item)
	}
	return nil, nil
}

func hasKey(body []byte, key string) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	_, ok := probe[key]
	return ok
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(s)
}
