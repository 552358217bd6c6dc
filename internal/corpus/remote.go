package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auroraclub/memberqa/internal/models"
)

// RemoteFetcher pulls member messages from the upstream messages API,
// paginating with limit/offset and retrying transient failures with
// exponential backoff. Auth and rate-limit responses stop pagination
// and return whatever was fetched so far rather than failing the whole
// refresh.
type RemoteFetcher struct {
	client   *http.Client
	baseURL  string
	pageSize int
	retries  uint64
	logger   *zap.Logger
}

func NewRemoteFetcher(baseURL string, pageSize int, timeout time.Duration, logger *zap.Logger) *RemoteFetcher {
	if pageSize <= 0 {
		pageSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteFetcher{
		client:   &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		retries:  3,
		logger:   logger,
	}
}

// page mirrors the upstream response shape {"total": N, "items": [...]}.
type page struct {
	Total int           `json:"total"`
	Items []wireMessage `json:"items"`
}

// wireMessage tolerates the loose upstream field types: numeric or
// string ids, and timestamps in any RFC3339-ish form.
type wireMessage struct {
	ID        json.RawMessage `json:"id"`
	UserName  string          `json:"user_name"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

// FetchAll retrieves every page of messages, deduplicated by id, in
// the order the upstream returns them.
func (f *RemoteFetcher) FetchAll(ctx context.Context) ([]models.Message, error) {
	var all []models.Message
	seen := make(map[string]struct{})
	total := 0

	for offset := 0; ; offset += f.pageSize {
		pg, err := f.fetchPage(ctx, offset)
		if err != nil {
			if isAccessDenied(err) && len(all) > 0 {
				f.logger.Warn("upstream denied further pages, keeping partial corpus",
					zap.Error(err),
					zap.Int("messages", len(all)))
				return all, nil
			}
			return nil, err
		}

		if len(pg.Items) == 0 {
			break
		}
		if pg.Total > 0 {
			total = pg.Total
		}

		for _, item := range pg.Items {
			msg := item.toMessage()
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
			all = append(all, msg)
		}

		if len(pg.Items) < f.pageSize {
			break
		}
		if total > 0 && len(all) >= total {
			break
		}
	}

	f.logger.Info("fetched corpus from upstream",
		zap.Int("messages", len(all)),
		zap.Int("reported_total", total))
	return all, nil
}

func (f *RemoteFetcher) fetchPage(ctx context.Context, offset int) (page, error) {
	url := fmt.Sprintf("%s?limit=%d&offset=%d", f.baseURL, f.pageSize, offset)

	var pg page
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusPaymentRequired,
			http.StatusForbidden, http.StatusTooManyRequests:
			return backoff.Permanent(accessDeniedError{status: resp.StatusCode})
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		decoded, err := decodePage(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("decoding page at offset %d: %w", offset, err))
		}
		pg = decoded
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return page{}, fmt.Errorf("fetching page at offset %d: %w", offset, err)
	}
	return pg, nil
}

// decodePage accepts both the paginated object form and a bare array.
func decodePage(body []byte) (page, error) {
	var pg page
	if err := json.Unmarshal(body, &pg); err == nil && pg.Items != nil {
		return pg, nil
	}

	var items []wireMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return page{}, fmt.Errorf("unrecognized response format: %w", err)
	}
	return page{Total: len(items), Items: items}, nil
}

func (m wireMessage) toMessage() models.Message {
	id := strings.Trim(string(m.ID), `"`)
	if id == "" || id == "null" {
		id = uuid.NewString()
	}

	ts, _ := time.Parse(time.RFC3339, m.Timestamp)

	return models.Message{
		ID:        id,
		Author:    m.UserName,
		Text:      m.Message,
		Timestamp: ts,
	}
}

type accessDeniedError struct {
	status int
}

func (e accessDeniedError) Error() string {
	return fmt.Sprintf("upstream access denied: HTTP %d", e.status)
}

func isAccessDenied(err error) bool {
	var denied accessDeniedError
	return errors.As(err, &denied)
}
