package htmldoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// parseResponse is the MediaWiki action=parse response body.
type parseResponse struct {
	Parse *struct {
		Title  string          `json:"title"`
		PageID int             `json:"pageid"`
		Text   json.RawMessage `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// ParseParseAPI decodes a MediaWiki Parse API response (prop=text) and parses
// the page HTML it carries. Both formatversion=2 ("text": "...") and the
// legacy shape ("text": {"*": "..."}) are accepted.
func ParseParseAPI(r io.Reader, opts ...Option) (*model.Document, error) {
	var resp parseResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, &DocumentParseError{Err: fmt.Errorf("decoding parse response: %w", err)}
	}

	if resp.Error != nil {
		return nil, &DocumentParseError{Err: fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info)}
	}
	if resp.Parse == nil {
		return nil, &DocumentParseError{Err: errors.New("response has no parse section")}
	}

	text, err := decodeText(resp.Parse.Text)
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}

	doc, err := Parse(strings.NewReader(text), opts...)
	if err != nil {
		return nil, err
	}
	if resp.Parse.Title != "" {
		doc.Title = textnorm.Clean(resp.Parse.Title)
	}

	return doc, nil
}

func decodeText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("parse section has no text")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return "", fmt.Errorf("decoding parse text: %w", err)
	}
	text, ok := legacy["*"]
	if !ok {
		return "", errors.New("parse text has no content")
	}
	return text, nil
}
