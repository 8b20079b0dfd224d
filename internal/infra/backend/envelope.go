package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

// レスポンスの共通形 {"success": bool, "message": "...", "data": ...}
// data が無ければボディ全体をペイロードとして扱う。
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(status int, body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	var env envelope
	if body[0] == '{' {
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("decode envelope: %w", err)
		}
		//2xxでも success:false は失敗として返す
		if env.Success != nil && !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = env.Error
			}
			return &repo.APIError{Status: status, Message: msg}
		}
	}
	if out == nil {
		return nil
	}

	payload := body
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// errorMessage はエラーボディから message / error を取り出す
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
