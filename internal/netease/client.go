package netease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/franz/netease-audit/internal/util"
)

const (
	// DefaultBaseURL is a local NeteaseCloudMusicApi proxy
	DefaultBaseURL = "http://localhost:3000"

	// PageSize is the catalog page size
	PageSize = 100

	// UserAgent identifies this application to the API proxy
	UserAgent = "netease-audit/1.0 (https://github.com/franz/netease-audit)"

	// SearchTypeSong, SearchTypeArtist and SearchTypeLyric select the
	// cloudsearch result kind.
	SearchTypeSong   = 1
	SearchTypeArtist = 100
	SearchTypeLyric  = 1006
)

// Options configures a Client
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Retries       int
}

// Client issues rate limited, retried GET requests against the NetEase API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retry      *util.RetryConfig
}

// NewClient creates a new NetEase API client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = max(1, int(opts.RatePerSecond))
	}

	retry := util.DefaultRetryConfig()
	if opts.Retries > 0 {
		retry.MaxAttempts = opts.Retries
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(limit, burst),
		retry:      retry,
	}
}

// SearchArtists searches artists by name
func (c *Client) SearchArtists(ctx context.Context, name string) (*ArtistSearchResult, error) {
	if name == "" {
		return nil, fmt.Errorf("artist name cannot be empty")
	}

	var resp searchArtistsResponse
	params := url.Values{"keywords": {name}, "type": {strconv.Itoa(SearchTypeArtist)}}
	if _, err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	util.DebugLog("NetEase: artist search '%s' returned %d candidates", name, len(resp.Result.Artists))
	return &resp.Result, nil
}

// GetArtist looks up an artist profile by id
func (c *Client) GetArtist(ctx context.Context, id int64) (*ArtistProfile, error) {
	var resp artistResponse
	if _, err := c.get(ctx, "/artists", idParams(id), &resp); err != nil {
		return nil, err
	}
	if resp.Artist.ID == 0 {
		resp.Artist.ID = id
	}
	return &resp.Artist, nil
}

// SongCount returns the total number of songs in an artist's catalog
func (c *Client) SongCount(ctx context.Context, artistID int64) (int, error) {
	var resp catalogPageResponse
	params := idParams(artistID)
	params.Set("limit", "1")
	if _, err := c.get(ctx, "/artist/songs", params, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// CatalogPage returns one page of an artist's catalog. Each song keeps its
// raw payload.
func (c *Client) CatalogPage(ctx context.Context, artistID int64, offset, limit int) ([]Song, error) {
	var resp catalogPageResponse
	params := idParams(artistID)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	if _, err := c.get(ctx, "/artist/songs", params, &resp); err != nil {
		return nil, err
	}

	songs := make([]Song, 0, len(resp.Songs))
	for _, raw := range resp.Songs {
		var s Song
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parsing catalog song: %w", err)
		}
		s.Raw = raw
		songs = append(songs, s)
	}
	return songs, nil
}

// SongDetails fetches song details for the given ids in one call
func (c *Client) SongDetails(ctx context.Context, ids []int64) ([]Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	var resp songDetailResponse
	params := url.Values{"ids": {strings.Join(parts, ",")}}
	if _, err := c.get(ctx, "/song/detail", params, &resp); err != nil {
		return nil, err
	}
	return resp.Songs, nil
}

// GetAlbum looks up album details by id
func (c *Client) GetAlbum(ctx context.Context, albumID int64) (*Album, error) {
	var resp albumResponse
	if _, err := c.get(ctx, "/album", idParams(albumID), &resp); err != nil {
		return nil, err
	}
	if resp.Album.ID == 0 {
		resp.Album.ID = albumID
	}
	return &resp.Album, nil
}

// CommentCount returns the number of comments on a song
func (c *Client) CommentCount(ctx context.Context, songID int64) (int64, error) {
	var resp commentResponse
	params := idParams(songID)
	params.Set("limit", "1")
	if _, err := c.get(ctx, "/comment/music", params, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// FollowerCount returns the number of followers of an artist
func (c *Client) FollowerCount(ctx context.Context, artistID int64) (int64, error) {
	var resp followResponse
	if _, err := c.get(ctx, "/artist/follow/count", idParams(artistID), &resp); err != nil {
		return 0, err
	}
	return resp.Data.FansCnt, nil
}

// GetLyrics fetches the lyric payload of a song
func (c *Client) GetLyrics(ctx context.Context, songID int64) (*Lyrics, error) {
	var resp Lyrics
	if _, err := c.get(ctx, "/lyric", idParams(songID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchSongs runs a song (type 1) or lyric (type 1006) search
func (c *Client) SearchSongs(ctx context.Context, keywords string, searchType, limit int) ([]SearchSong, error) {
	if keywords == "" {
		return nil, nil
	}

	var resp searchSongsResponse
	params := url.Values{
		"keywords": {keywords},
		"type":     {strconv.Itoa(searchType)},
		"limit":    {strconv.Itoa(limit)},
	}
	if _, err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Songs, nil
}

// get performs one logical GET: rate limited, retried on transient failures,
// decoded into out. Returns the raw body.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := util.RetryWithBackoff(ctx, c.retry, func() ([]byte, error) {
		return c.doRequest(ctx, reqURL)
	}, "GET "+path)
	if err != nil {
		return nil, err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, &util.RemoteFetchError{URL: reqURL, Err: fmt.Errorf("parsing response: %w", err)}
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != 0 && env.Code != http.StatusOK {
		msg := env.Message
		if msg == "" {
			msg = env.Msg
		}
		return nil, &util.RemoteFetchError{Status: env.Code, URL: reqURL, Err: fmt.Errorf("api error: %s", msg)}
	}

	return body, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// client timeout; keep it retryable
			return nil, &util.RemoteFetchError{URL: reqURL, Err: fmt.Errorf("request timed out: %v", err)}
		}
		return nil, &util.RemoteFetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &util.RemoteFetchError{URL: reqURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &util.RemoteFetchError{
			Status: resp.StatusCode,
			URL:    reqURL,
			Err:    fmt.Errorf("unexpected status: %s", truncate(string(body), 200)),
		}
	}

	return body, nil
}

func idParams(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
