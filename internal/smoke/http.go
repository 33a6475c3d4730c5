package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/query"
	"github.com/okian/podium/pkg/logger"
)

// Retry settings for throttled writes.
const (
	maxAttempts    = 5
	initialBackoff = 50 * time.Millisecond
)

// ErrStatus is returned when the service answers with an unexpected status.
var ErrStatus = errors.New("unexpected status")

// Client talks to the podium HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, e.Error)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks that the metrics endpoint answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: /healthz: %d", ErrStatus, resp.StatusCode)
	}
	return nil
}

// Login exchanges the access code for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, code string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{"code": code}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: login returned no token", ErrStatus)
	}
	c.token = resp.Token
	return nil
}

// Games lists the catalog games.
func (c *Client) Games(ctx context.Context) ([]model.Game, error) {
	var games []model.Game
	_, err := c.do(ctx, http.MethodGet, "/api/games", nil, &games)
	return games, err
}

// Faculties lists the catalog faculties.
func (c *Client) Faculties(ctx context.Context) ([]string, error) {
	var faculties []string
	_, err := c.do(ctx, http.MethodGet, "/api/faculties", nil, &faculties)
	return faculties, err
}

// Leaderboard fetches the joined, sorted result list.
func (c *Client) Leaderboard(ctx context.Context) ([]query.Row, error) {
	var rows []query.Row
	_, err := c.do(ctx, http.MethodGet, "/api/results", nil, &rows)
	return rows, err
}

// Record posts one placement, retrying while the service reports
// backpressure. It returns how many attempts were throttled.
func (c *Client) Record(ctx context.Context, p Placement) (int, error) {
	backoff := initialBackoff
	throttled := 0
	for attempt := 1; ; attempt++ {
		status, err := c.do(ctx, http.MethodPost, "/api/results", p, nil)
		if status != http.StatusTooManyRequests || attempt == maxAttempts {
			return throttled, err
		}
		throttled++
		select {
		case <-ctx.Done():
			return throttled, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// Delete removes the placement at (gameID, position).
func (c *Client) Delete(ctx context.Context, gameID string, position int) error {
	path := "/api/results/" + url.PathEscape(gameID) + "/" + strconv.Itoa(position)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// submitPlacements posts placements through a pool of workers.
func submitPlacements(ctx context.Context, cfg *Config, c *Client, placements []Placement, stats *Stats) {
	log := logger.Get().Named("smoke")
	log.Info(ctx, "submitting placements",
		logger.Int("placements", len(placements)),
		logger.Int("workers", cfg.Workers))

	var accepted, throttled, failed int64
	work := make(chan Placement, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				n, err := c.Record(ctx, p)
				atomic.AddInt64(&throttled, int64(n))
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "placement rejected",
						logger.String("game_id", p.GameID),
						logger.Int("position", p.Position),
						logger.Error(err))
					continue
				}
				atomic.AddInt64(&accepted, 1)
			}
		}()
	}

	go func() {
		defer close(work)
		for _, p := range placements {
			select {
			case <-ctx.Done():
				return
			case work <- p:
			}
		}
	}()
	wg.Wait()

	stats.PlacementsAccepted = int(atomic.LoadInt64(&accepted))
	stats.PlacementsThrottled = int(atomic.LoadInt64(&throttled))
	stats.PlacementsFailed = int(atomic.LoadInt64(&failed))
}
