package overseerr

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/cryptiklemur/discordarr/src/webclient"
)

// Client talks to the Overseerr v1 API: request listing and mutation, media
// details, user identity.
type Client struct {
	api    *webclient.Client
	logger *log.Logger
}

func New(baseURL, apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{api: webclient.New(baseURL, apiKey), logger: logger}
}

// ListRequests pages through /request. filter is Overseerr's filter keyword
// (all, pending, approved, ...).
func (c *Client) ListRequests(ctx context.Context, take, skip int, filter, sort string) ([]Request, error) {
	params := url.Values{}
	params.Set("take", strconv.Itoa(take))
	params.Set("skip", strconv.Itoa(skip))
	if filter != "" {
		params.Set("filter", filter)
	}
	if sort != "" {
		params.Set("sort", sort)
	}
	var resp RequestsResponse
	if err := c.api.Get(ctx, "/api/v1/request", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) GetRequest(ctx context.Context, requestID uint64) (*Request, error) {
	var req Request
	if err := c.api.Get(ctx, fmt.Sprintf("/api/v1/request/%d", requestID), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) ApproveRequest(ctx context.Context, requestID uint64) (*Request, error) {
	var req Request
	if err := c.api.Post(ctx, fmt.Sprintf("/api/v1/request/%d/approve", requestID), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) DeclineRequest(ctx context.Context, requestID uint64) (*Request, error) {
	var req Request
	if err := c.api.Post(ctx, fmt.Sprintf("/api/v1/request/%d/decline", requestID), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) CreateRequest(ctx context.Context, body CreateRequestBody) (*Request, error) {
	var req Request
	if err := c.api.Post(ctx, "/api/v1/request", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) GetMovie(ctx context.Context, tmdbID uint64) (*Movie, error) {
	var movie Movie
	if err := c.api.Get(ctx, fmt.Sprintf("/api/v1/movie/%d", tmdbID), nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) GetTv(ctx context.Context, tmdbID uint64) (*Tv, error) {
	var tv Tv
	if err := c.api.Get(ctx, fmt.Sprintf("/api/v1/tv/%d", tmdbID), nil, &tv); err != nil {
		return nil, err
	}
	return &tv, nil
}

func (c *Client) GetUser(ctx context.Context, userID uint64) (*User, error) {
	var user User
	if err := c.api.Get(ctx, fmt.Sprintf("/api/v1/user/%d", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserNotificationSettings is the secondary lookup for a requester's
// Discord id when the user profile does not carry one.
func (c *Client) GetUserNotificationSettings(ctx context.Context, userID uint64) (*NotificationSettings, error) {
	var settings NotificationSettings
	if err := c.api.Get(ctx, fmt.Sprintf("/api/v1/user/%d/settings/notifications", userID), nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Search runs a multi search for one page of results.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("language", "en")
	var resp SearchResponse
	if err := c.api.Get(ctx, "/api/v1/search", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchByType collects up to limit results of a single media type,
// deduplicated across pages.
func (c *Client) SearchByType(ctx context.Context, query, mediaType string, limit int) ([]SearchResult, error) {
	const maxPages = 5
	seen := make(map[uint64]bool)
	var results []SearchResult

	for page := 1; page <= maxPages; page++ {
		resp, err := c.Search(ctx, query, page)
		if err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			if r.MediaType != mediaType || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			results = append(results, r)
			if len(results) >= limit {
				return results, nil
			}
		}
		if page >= resp.TotalPages {
			break
		}
	}
	return results, nil
}

// GetUserByDiscordID walks the user listing and matches on each user's
// notification settings. Slow path; callers cache the result.
func (c *Client) GetUserByDiscordID(ctx context.Context, discordID string) (*User, error) {
	const take = 100
	page := 1

	for {
		params := url.Values{}
		params.Set("take", strconv.Itoa(take))
		params.Set("skip", strconv.Itoa((page-1)*take))
		var resp UsersResponse
		if err := c.api.Get(ctx, "/api/v1/user", params, &resp); err != nil {
			return nil, err
		}

		for i := range resp.Results {
			user := resp.Results[i]
			settings, err := c.GetUserNotificationSettings(ctx, user.ID)
			if err != nil {
				continue
			}
			if settings.DiscordID == discordID {
				user.Settings = &UserSettings{DiscordID: discordID}
				return &user, nil
			}
		}

		if len(resp.Results) == 0 || page >= resp.PageInfo.Pages {
			break
		}
		page++
	}

	c.logger.Printf("overseerr: no user found with discord id %s", discordID)
	return nil, nil
}

// UpdateUserNotificationSettings writes the discord id mapping back to
// Overseerr during account linking.
func (c *Client) UpdateUserNotificationSettings(ctx context.Context, userID uint64, discordID string) error {
	body := map[string]interface{}{"discordId": discordID}
	return c.api.Post(ctx, fmt.Sprintf("/api/v1/user/%d/settings/notifications", userID), body, nil)
}

// Login performs a local auth check and returns the matching user. Used only
// by the account-link handshake.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var user User
	if err := c.api.Post(ctx, "/api/v1/auth/local", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
