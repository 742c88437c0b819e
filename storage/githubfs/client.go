// Package githubfs reads and writes whole files in a GitHub repository via
// the contents API. It is the remote authoritative tier of the record store:
// get returns the file revision (sha) with its content, put replaces the
// file atomically against an expected revision.
package githubfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
)

var (
	ErrNotFound = errors.New("remote file not found")
	// ErrRevisionMismatch is returned when the file changed remotely after
	// it was read; the caller decides whether to retry with a fresh read.
	ErrRevisionMismatch = errors.New("remote file revision mismatch")
)

type (
	// File is one fetched remote file revision.
	File struct {
		SHA     string
		Content []byte
	}

	Client struct {
		httpc   *http.Client
		baseURL string
		owner   string
		repo    string
		branch  string
		token   string
	}
)

func NewClient(conf *core.Config, baseURL ...string) *Client {
	base := "https://api.github.com"
	if len(baseURL) > 0 {
		base = strings.TrimRight(baseURL[0], "/")
	}
	return &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		baseURL: base,
		owner:   conf.GitHub.Owner,
		repo:    conf.GitHub.Repo,
		branch:  conf.GitHub.Branch,
		token:   conf.GitHub.Token,
	}
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	return c.httpc.Do(req)
}

// GetFile fetches the current revision of path on the configured branch,
// busting any intermediate HTTP cache. Content is decoded through a byte
// path so multi-byte text round-trips intact.
func (c *Client) GetFile(ctx context.Context, path string) (File, error) {
	url := fmt.Sprintf("%s?ref=%s&t=%d", c.contentsURL(path), c.branch, time.Now().UnixNano()/int64(time.Millisecond))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return File{}, errors.Wrap(err, "building contents request")
	}

	resp, err := c.do(req)
	if err != nil {
		return File{}, errors.Wrap(err, "fetching remote file")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return File{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return File{}, errors.Errorf("remote store: %s", resp.Status)
	}

	var payload struct {
		SHA     string `json:"sha"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return File{}, errors.Wrap(err, "decoding contents response")
	}

	// the API wraps base64 at 60 columns
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return File{}, errors.Wrap(err, "decoding file content")
	}
	return File{SHA: payload.SHA, Content: raw}, nil
}

// PutFile replaces path with content as one commit. sha must be the revision
// previously read ("" creates the file); message is the human-readable
// change description. Returns the new revision.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  c.branch,
	}
	if sha != "" {
		body["sha"] = sha
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "marshaling contents request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(buf))
	if err != nil {
		return "", errors.Wrap(err, "building contents request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", errors.Wrap(err, "updating remote file")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return "", ErrRevisionMismatch
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Errorf("remote store: %s: %s", resp.Status, msg)
	}

	var payload struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrap(err, "decoding contents response")
	}
	return payload.Content.SHA, nil
}

// Ping checks that the repository is reachable with the configured token.
func (c *Client) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "building repo request")
	}
	resp, err := c.do(req)
	if err != nil {
		return errors.Wrap(err, "reaching remote store")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("remote store: %s", resp.Status)
	}
	return nil
}

// ShortRevision abbreviates a revision id the way git does.
func ShortRevision(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
