package darklyrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ClientConfig carries the site access knobs from the config layer.
type ClientConfig struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	Delay          time.Duration
	IndexLetters   []string
}

// Client fetches site pages with a synchronous Colly collector. All fetches
// are strictly sequential: one request at a time, a fixed delay between
// requests to the same host, one attempt per URL.
type Client struct {
	base          *url.URL
	letters       []string
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewClient constructs a configured Client.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	collector.AllowURLRevisit = false
	collector.SetRequestTimeout(cfg.RequestTimeout)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("set collector limits: %w", err)
	}

	return &Client{
		base:          base,
		letters:       cfg.IndexLetters,
		baseCollector: collector,
		logger:        logger,
	}, nil
}

// Fetch retrieves one page. Each call clones the base collector so request
// state never leaks between fetches.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	requestsTotal.Inc()
	if err := collector.Visit(rawURL); err != nil {
		requestErrorsTotal.Inc()
		return nil, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if res.err != nil {
			requestErrorsTotal.Inc()
			return nil, fmt.Errorf("fetch %s: %w", rawURL, res.err)
		}
		return res.body, nil
	default:
		requestErrorsTotal.Inc()
		return nil, fmt.Errorf("fetch %s produced no result", rawURL)
	}
}

// ArtistIndex fetches every letter index page and concatenates the parsed
// entries in letter order. A failed letter page is fatal: a partial index
// would shift the quarter boundaries and break run-to-run disjointness.
func (c *Client) ArtistIndex(ctx context.Context) ([]ArtistRef, error) {
	var refs []ArtistRef
	for _, letter := range c.letters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageURL := fmt.Sprintf("%s/%s.html", c.base.String(), letter)
		body, err := c.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("index letter %q: %w", letter, err)
		}
		parsed, err := ParseArtistIndex(body, c.base)
		if err != nil {
			return nil, fmt.Errorf("index letter %q: %w", letter, err)
		}
		c.logger.Debug("Parsed index page",
			zap.String("letter", letter),
			zap.Int("artists", len(parsed)),
		)
		refs = append(refs, parsed...)
	}
	return refs, nil
}

// ArtistPage fetches and parses one artist's album listing.
func (c *Client) ArtistPage(ctx context.Context, ref ArtistRef) ([]AlbumRef, error) {
	pageURL, err := url.Parse(ref.URL)
	if err != nil {
		return nil, fmt.Errorf("artist url %q: %w", ref.URL, err)
	}
	body, err := c.Fetch(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	return ParseArtistPage(body, pageURL)
}

// AlbumLyrics fetches and parses one album's lyrics page.
func (c *Client) AlbumLyrics(ctx context.Context, lyricsURL string) (map[int]string, error) {
	body, err := c.Fetch(ctx, lyricsURL)
	if err != nil {
		return nil, err
	}
	return ParseAlbumLyrics(body)
}

type fetchResult struct {
	body []byte
	err  error
}
